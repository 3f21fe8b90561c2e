package enums

import "fmt"

// OrderStatus tracks the lifecycle of a storefront order.
type OrderStatus string

const (
	// OrderStatusPending is the initial state at checkout, before the
	// gateway has answered.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaidPending means the gateway confirmed payment but the
	// kitchen has not confirmed fulfillment yet.
	OrderStatusPaidPending    OrderStatus = "paid_pending"
	OrderStatusPaymentPending OrderStatus = "payment_pending"
	OrderStatusPaymentFailed  OrderStatus = "payment_failed"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusExpired        OrderStatus = "expired"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaidPending,
	OrderStatusPaymentPending,
	OrderStatusPaymentFailed,
	OrderStatusConfirmed,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusExpired,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsSettled reports whether the payment outcome for the order is final.
func (o OrderStatus) IsSettled() bool {
	switch o {
	case OrderStatusPending, OrderStatusPaymentPending:
		return false
	}
	return true
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
