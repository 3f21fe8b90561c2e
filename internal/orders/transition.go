package orders

import "github.com/rahulvermadev/tiffinbox-backend/pkg/enums"

// Gateway payment states shared by Razorpay and PhonePe callbacks.
const (
	PaymentStateCompleted = "COMPLETED"
	PaymentStateFailed    = "FAILED"
	PaymentStatePending   = "PENDING"
)

// StatusForPaymentState maps a gateway payment state onto the order
// lifecycle. Unrecognized states land on paid_pending so a paying
// customer is never marked failed by a state we do not know; the
// reconciliation worker settles them against the gateway later.
func StatusForPaymentState(state string) enums.OrderStatus {
	switch state {
	case PaymentStateFailed:
		return enums.OrderStatusPaymentFailed
	case PaymentStatePending:
		return enums.OrderStatusPaymentPending
	case PaymentStateCompleted:
		return enums.OrderStatusPaidPending
	default:
		return enums.OrderStatusPaidPending
	}
}

// AttemptStatusForPaymentState mirrors the order mapping for the payment
// attempt row.
func AttemptStatusForPaymentState(state string) enums.PaymentAttemptStatus {
	switch state {
	case PaymentStateFailed:
		return enums.PaymentAttemptStatusFailed
	case PaymentStatePending:
		return enums.PaymentAttemptStatusPending
	default:
		return enums.PaymentAttemptStatusCompleted
	}
}
