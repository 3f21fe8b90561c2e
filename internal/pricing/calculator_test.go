package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
)

func weeklyPlan() models.SubscriptionPlan {
	return models.SubscriptionPlan{
		ID:              "weekly",
		Name:            "Weekly",
		DurationDays:    7,
		DiscountPercent: decimal.NewFromInt(10),
		Active:          true,
	}
}

func TestDiscountedUnitPrice(t *testing.T) {
	t.Parallel()

	price := decimal.NewFromInt(100)

	got := DiscountedUnitPrice(price, weeklyPlan())
	if !got.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("10%% off 100 = %s, want 90", got)
	}

	got = DiscountedUnitPrice(price, OneTimePlan)
	if !got.Equal(price) {
		t.Fatalf("one-time plan must not discount, got %s", got)
	}
}

func TestSubscriptionTotalWeekly(t *testing.T) {
	t.Parallel()

	// 100 * 0.90 * 7 days * qty 2 = 1260
	total := SubscriptionTotal(decimal.NewFromInt(100), weeklyPlan(), 2, 1)
	if !total.Equal(decimal.NewFromInt(1260)) {
		t.Fatalf("weekly x2 total = %s, want 1260", total)
	}
}

func TestSubscriptionTotalDurationMultiplier(t *testing.T) {
	t.Parallel()

	// Two weekly cycles double the total.
	total := SubscriptionTotal(decimal.NewFromInt(100), weeklyPlan(), 2, 2)
	if !total.Equal(decimal.NewFromInt(2520)) {
		t.Fatalf("weekly x2 over 2 cycles = %s, want 2520", total)
	}
}

func TestSubscriptionTotalClamps(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromInt(100)

	if total := SubscriptionTotal(base, weeklyPlan(), 0, 1); !total.Equal(decimal.Zero) {
		t.Fatalf("zero qty total = %s, want 0", total)
	}
	if total := SubscriptionTotal(base, weeklyPlan(), -3, 1); !total.Equal(decimal.Zero) {
		t.Fatalf("negative qty total = %s, want 0", total)
	}
	// Multiplier below one behaves as one.
	if total := SubscriptionTotal(base, weeklyPlan(), 2, 0); !total.Equal(decimal.NewFromInt(1260)) {
		t.Fatalf("zero multiplier total = %s, want 1260", total)
	}

	flat := models.SubscriptionPlan{ID: "oddball", DurationDays: 0, Active: true}
	// Plans with no duration still price at least one day.
	if total := SubscriptionTotal(base, flat, 1, 1); !total.Equal(base) {
		t.Fatalf("zero-duration total = %s, want 100", total)
	}
}

func TestSubscriptionTotalFractionalDiscount(t *testing.T) {
	t.Parallel()

	plan := models.SubscriptionPlan{
		ID:              "monthly",
		DurationDays:    30,
		DiscountPercent: decimal.NewFromInt(15),
		Active:          true,
	}
	// 149.50 * 0.85 * 30 = 3812.25, exact in decimal math.
	total := SubscriptionTotal(decimal.RequireFromString("149.50"), plan, 1, 1)
	if !total.Equal(decimal.RequireFromString("3812.25")) {
		t.Fatalf("monthly total = %s, want 3812.25", total)
	}
}

func TestToPaise(t *testing.T) {
	t.Parallel()

	if got := ToPaise(decimal.NewFromInt(1210)); got != 121000 {
		t.Fatalf("1210 rupees = %d paise, want 121000", got)
	}
	if got := ToPaise(decimal.RequireFromString("12.345")); got != 1235 {
		t.Fatalf("12.345 rounds to %d paise, want 1235", got)
	}
	if got := ToPaise(decimal.RequireFromString("12.344")); got != 1234 {
		t.Fatalf("12.344 rounds to %d paise, want 1234", got)
	}
}
