package orders

import (
	"testing"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
)

func TestStatusForPaymentState(t *testing.T) {
	t.Parallel()

	cases := map[string]enums.OrderStatus{
		"COMPLETED":       enums.OrderStatusPaidPending,
		"FAILED":          enums.OrderStatusPaymentFailed,
		"PENDING":         enums.OrderStatusPaymentPending,
		"DECLINED":        enums.OrderStatusPaidPending,
		"something-weird": enums.OrderStatusPaidPending,
		"":                enums.OrderStatusPaidPending,
	}
	for state, want := range cases {
		if got := StatusForPaymentState(state); got != want {
			t.Fatalf("StatusForPaymentState(%q) = %s, want %s", state, got, want)
		}
	}
}

func TestAttemptStatusForPaymentState(t *testing.T) {
	t.Parallel()

	cases := map[string]enums.PaymentAttemptStatus{
		"COMPLETED": enums.PaymentAttemptStatusCompleted,
		"FAILED":    enums.PaymentAttemptStatusFailed,
		"PENDING":   enums.PaymentAttemptStatusPending,
		"UNKNOWN":   enums.PaymentAttemptStatusCompleted,
	}
	for state, want := range cases {
		if got := AttemptStatusForPaymentState(state); got != want {
			t.Fatalf("AttemptStatusForPaymentState(%q) = %s, want %s", state, got, want)
		}
	}
}
