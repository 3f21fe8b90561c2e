package catalog

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Paneer Butter Masala Thali": "paneer-butter-masala-thali",
		"  Dal  &  Rice  ":           "dal-rice",
		"Chef's Special #2":          "chef-s-special-2",
		"!!!":                        "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
