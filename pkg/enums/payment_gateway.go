package enums

import "fmt"

// PaymentGateway names a supported payment provider.
type PaymentGateway string

const (
	PaymentGatewayRazorpay PaymentGateway = "razorpay"
	PaymentGatewayPhonePe  PaymentGateway = "phonepe"
)

var validPaymentGateways = []PaymentGateway{
	PaymentGatewayRazorpay,
	PaymentGatewayPhonePe,
}

// String implements fmt.Stringer.
func (p PaymentGateway) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentGateway.
func (p PaymentGateway) IsValid() bool {
	for _, candidate := range validPaymentGateways {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentGateway converts raw input into a PaymentGateway.
func ParsePaymentGateway(value string) (PaymentGateway, error) {
	for _, candidate := range validPaymentGateways {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment gateway %q", value)
}
