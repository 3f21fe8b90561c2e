package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/internal/cart"
	"github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// couponClearer drops the session coupon once it is burned into an order.
type couponClearer interface {
	Remove(ctx context.Context, sessionID string) error
}

// Input is a checkout request: the cart to price plus who is paying and
// through which gateway.
type Input struct {
	SessionID     string               `json:"session_id" validate:"required,max=128"`
	CustomerName  string               `json:"customer_name" validate:"required,max=120"`
	CustomerPhone string               `json:"customer_phone" validate:"required,min=10,max=15"`
	CustomerEmail string               `json:"customer_email" validate:"omitempty,email"`
	DeliveryAddr  string               `json:"delivery_addr" validate:"required,max=500"`
	Gateway       enums.PaymentGateway `json:"gateway" validate:"required"`
	Items         []cart.QuoteItem     `json:"items" validate:"required,min=1,max=30,dive"`
}

// Result is what the storefront needs to continue the payment: either a
// redirect URL (PhonePe) or the gateway order id for the browser SDK
// (Razorpay).
type Result struct {
	OrderID        uuid.UUID            `json:"order_id"`
	OrderNumber    int64                `json:"order_number"`
	MerchantTxnID  string               `json:"merchant_txn_id"`
	Gateway        enums.PaymentGateway `json:"gateway"`
	GatewayOrderID string               `json:"gateway_order_id,omitempty"`
	RedirectURL    string               `json:"redirect_url,omitempty"`
	AmountPaise    int64                `json:"amount_paise"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// Service turns a priced cart into a pending order and opens the payment
// with the chosen gateway.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	logg     *logger.Logger
	tx       txRunner
	cart     cart.Service
	repo     orders.Repository
	gateways *payments.Registry
	coupons  couponClearer
}

// ServiceParams wire the checkout service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Cart     cart.Service
	Orders   orders.Repository
	Gateways *payments.Registry
	Coupons  couponClearer
}

// NewService validates dependencies and builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Gateways == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon clearer required")
	}
	return &service{
		logg:     params.Logger,
		tx:       params.DB,
		cart:     params.Cart,
		repo:     params.Orders,
		gateways: params.Gateways,
		coupons:  params.Coupons,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	gateway, ok := s.gateways.Resolve(input.Gateway)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported payment gateway %q", input.Gateway))
	}

	quote, err := s.cart.Quote(ctx, cart.QuoteInput{
		SessionID: input.SessionID,
		Items:     input.Items,
	})
	if err != nil {
		return nil, err
	}
	if quote.TotalPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	order, attempt, err := s.persistOrder(ctx, input, quote)
	if err != nil {
		return nil, err
	}

	payment, err := gateway.CreatePayment(ctx, payments.CreatePaymentInput{
		MerchantTxnID: attempt.MerchantTxnID,
		AmountPaise:   quote.TotalPaise,
		OrderNumber:   order.OrderNumber,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,
		Notes: map[string]string{
			"order_number": fmt.Sprintf("%d", order.OrderNumber),
		},
	})
	if err != nil {
		// The pending order stays behind for the TTL sweeper; the customer
		// sees the gateway failure and can retry checkout.
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"gateway":  input.Gateway.String(),
		})
		s.logg.Error(logCtx, "gateway payment creation failed", err)
		if updErr := s.repo.UpdateAttempt(ctx, attempt.ID, map[string]any{
			"status": enums.PaymentAttemptStatusFailed,
		}); updErr != nil {
			s.logg.Error(logCtx, "failed to mark attempt failed", updErr)
		}
		return nil, err
	}

	if payment.GatewayOrderID != "" {
		if err := s.repo.UpdateAttempt(ctx, attempt.ID, map[string]any{
			"gateway_order_id": payment.GatewayOrderID,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to record gateway order id")
		}
	}

	if err := s.coupons.Remove(ctx, input.SessionID); err != nil {
		s.logg.Warn(ctx, "failed to clear session coupon after checkout")
	}

	return &Result{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		MerchantTxnID:  attempt.MerchantTxnID,
		Gateway:        input.Gateway,
		GatewayOrderID: payment.GatewayOrderID,
		RedirectURL:    payment.RedirectURL,
		AmountPaise:    quote.TotalPaise,
		Warnings:       quote.Warnings,
	}, nil
}

func (s *service) persistOrder(ctx context.Context, input Input, quote *cart.Quote) (*models.Order, *models.PaymentAttempt, error) {
	var (
		order   *models.Order
		attempt *models.PaymentAttempt
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		orderNumber, err := txRepo.NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		order = &models.Order{
			ID:            uuid.New(),
			OrderNumber:   orderNumber,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			DeliveryAddr:  input.DeliveryAddr,
			Status:        enums.OrderStatusPending,
			Gateway:       input.Gateway,
			SubtotalPaise: quote.SubtotalPaise,
			DiscountPaise: quote.DiscountPaise,
			TotalPaise:    quote.TotalPaise,
		}
		if input.CustomerEmail != "" {
			email := input.CustomerEmail
			order.CustomerEmail = &email
		}
		if quote.CouponCode != "" {
			code := quote.CouponCode
			order.CouponCode = &code
		}
		for _, line := range quote.Lines {
			item := models.OrderLineItem{
				ID:             uuid.New(),
				ProductID:      line.ProductID,
				Name:           line.Name,
				PlanDays:       line.PlanDays,
				Qty:            line.Qty,
				UnitPricePaise: line.UnitPricePaise,
				LineTotalPaise: line.LineTotalPaise,
			}
			if line.PlanID != "" {
				planID := line.PlanID
				item.PlanID = &planID
			}
			order.Items = append(order.Items, item)
		}
		if err := txRepo.Create(ctx, order); err != nil {
			return err
		}

		attempt = &models.PaymentAttempt{
			ID:            uuid.New(),
			OrderID:       order.ID,
			Gateway:       input.Gateway,
			MerchantTxnID: newMerchantTxnID(orderNumber),
			Status:        enums.PaymentAttemptStatusCreated,
			AmountPaise:   quote.TotalPaise,
		}
		return txRepo.CreateAttempt(ctx, attempt)
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to persist order")
	}
	return order, attempt, nil
}

// newMerchantTxnID mints the correlation key gateways echo back in
// callbacks. PhonePe caps merchant transaction ids at 35 characters.
func newMerchantTxnID(orderNumber int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("TBX-%d-%s", orderNumber, suffix)
}
