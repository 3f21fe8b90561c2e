package payments

import (
	"context"
	"fmt"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
)

// CreatePaymentInput carries everything a gateway needs to open a payment
// for an order. Amounts are integer paise.
type CreatePaymentInput struct {
	MerchantTxnID string
	AmountPaise   int64
	OrderNumber   int64
	CustomerPhone string
	CustomerEmail string
	Notes         map[string]string
}

// CreatePaymentResult is the gateway's answer: either a gateway-side order
// id the client SDK continues with (Razorpay) or a redirect URL the
// browser is sent to (PhonePe).
type CreatePaymentResult struct {
	Gateway        enums.PaymentGateway
	GatewayOrderID string
	RedirectURL    string
}

// Gateway is the capability surface a payment provider must implement to
// participate in checkout.
type Gateway interface {
	Name() enums.PaymentGateway
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error)
}

// Registry resolves gateways by name at checkout time.
type Registry struct {
	gateways map[enums.PaymentGateway]Gateway
}

// NewRegistry indexes the provided gateways. Duplicate names are rejected.
func NewRegistry(gateways ...Gateway) (*Registry, error) {
	registry := &Registry{gateways: make(map[enums.PaymentGateway]Gateway, len(gateways))}
	for _, gw := range gateways {
		if gw == nil {
			return nil, fmt.Errorf("nil gateway")
		}
		name := gw.Name()
		if !name.IsValid() {
			return nil, fmt.Errorf("invalid gateway name %q", name)
		}
		if _, exists := registry.gateways[name]; exists {
			return nil, fmt.Errorf("duplicate gateway %q", name)
		}
		registry.gateways[name] = gw
	}
	return registry, nil
}

// Resolve returns the gateway registered under name, or false.
func (r *Registry) Resolve(name enums.PaymentGateway) (Gateway, bool) {
	gw, ok := r.gateways[name]
	return gw, ok
}

// Names lists the registered gateway names.
func (r *Registry) Names() []enums.PaymentGateway {
	names := make([]enums.PaymentGateway, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
