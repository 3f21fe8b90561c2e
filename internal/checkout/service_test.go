package checkout

import (
	"context"
	"io"
	"testing"

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

type noopTxRunner struct{}

func (noopTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCartService struct {
	quote *cart.Quote
	err   error
}

func (s *stubCartService) Quote(context.Context, cart.QuoteInput) (*cart.Quote, error) {
	return s.quote, s.err
}

type stubOrdersRepo struct {
	orders.Repository

	nextNumber     int64
	createdOrder   *models.Order
	createdAttempt *models.PaymentAttempt
	attemptUpdates map[string]any
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) NextOrderNumber(context.Context) (int64, error) {
	s.nextNumber++
	return s.nextNumber, nil
}

func (s *stubOrdersRepo) Create(_ context.Context, order *models.Order) error {
	s.createdOrder = order
	return nil
}

func (s *stubOrdersRepo) CreateAttempt(_ context.Context, attempt *models.PaymentAttempt) error {
	s.createdAttempt = attempt
	return nil
}

func (s *stubOrdersRepo) UpdateAttempt(_ context.Context, _ uuid.UUID, updates map[string]any) error {
	if s.attemptUpdates == nil {
		s.attemptUpdates = map[string]any{}
	}
	for k, v := range updates {
		s.attemptUpdates[k] = v
	}
	return nil
}

type stubGateway struct {
	name   enums.PaymentGateway
	result *payments.CreatePaymentResult
	err    error
	seen   *payments.CreatePaymentInput
}

func (s *stubGateway) Name() enums.PaymentGateway { return s.name }

func (s *stubGateway) CreatePayment(_ context.Context, input payments.CreatePaymentInput) (*payments.CreatePaymentResult, error) {
	s.seen = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubCouponClearer struct {
	removed []string
}

func (s *stubCouponClearer) Remove(_ context.Context, sessionID string) error {
	s.removed = append(s.removed, sessionID)
	return nil
}

func testQuote() *cart.Quote {
	return &cart.Quote{
		Lines: []cart.QuoteLine{{
			ProductID:          uuid.New(),
			Name:               "Veg Thali",
			PlanID:             "weekly",
			PlanDays:           7,
			Qty:                2,
			DurationMultiplier: 1,
			UnitPricePaise:     9000,
			LineTotalPaise:     126000,
		}},
		CouponCode:    "TIFFIN50",
		SubtotalPaise: 126000,
		DiscountPaise: 5000,
		TotalPaise:    121000,
	}
}

func newCheckoutService(t *testing.T, gw *stubGateway, repo *stubOrdersRepo, coupons *stubCouponClearer) Service {
	t.Helper()

	registry, err := payments.NewRegistry(gw)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       noopTxRunner{},
		Cart:     &stubCartService{quote: testQuote()},
		Orders:   repo,
		Gateways: registry,
		Coupons:  coupons,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func checkoutInput(gateway enums.PaymentGateway) Input {
	return Input{
		SessionID:     "sess-1",
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		DeliveryAddr:  "12 MG Road, Pune",
		Gateway:       gateway,
		Items:         []cart.QuoteItem{{ProductID: uuid.New(), Qty: 2, PlanID: "weekly"}},
	}
}

func TestCheckoutRazorpay(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{
		name: enums.PaymentGatewayRazorpay,
		result: &payments.CreatePaymentResult{
			Gateway:        enums.PaymentGatewayRazorpay,
			GatewayOrderID: "order_abc123",
		},
	}
	repo := &stubOrdersRepo{nextNumber: 1000}
	coupons := &stubCouponClearer{}
	svc := newCheckoutService(t, gw, repo, coupons)

	result, err := svc.Checkout(context.Background(), checkoutInput(enums.PaymentGatewayRazorpay))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OrderNumber != 1001 {
		t.Fatalf("order number = %d, want 1001", result.OrderNumber)
	}
	if result.GatewayOrderID != "order_abc123" {
		t.Fatalf("gateway order id = %q", result.GatewayOrderID)
	}
	if result.AmountPaise != 121000 {
		t.Fatalf("amount = %d, want 121000", result.AmountPaise)
	}

	if repo.createdOrder == nil || repo.createdOrder.Status != enums.OrderStatusPending {
		t.Fatalf("order not created pending: %+v", repo.createdOrder)
	}
	if repo.createdOrder.CouponCode == nil || *repo.createdOrder.CouponCode != "TIFFIN50" {
		t.Fatal("coupon code not snapshotted onto order")
	}
	if len(repo.createdOrder.Items) != 1 || repo.createdOrder.Items[0].PlanDays != 7 {
		t.Fatalf("line items not snapshotted: %+v", repo.createdOrder.Items)
	}
	if repo.createdAttempt == nil || repo.createdAttempt.MerchantTxnID == "" {
		t.Fatal("payment attempt not created")
	}
	if gw.seen == nil || gw.seen.AmountPaise != 121000 {
		t.Fatalf("gateway saw wrong amount: %+v", gw.seen)
	}
	if got := repo.attemptUpdates["gateway_order_id"]; got != "order_abc123" {
		t.Fatalf("gateway order id not persisted, got %v", got)
	}
	if len(coupons.removed) != 1 || coupons.removed[0] != "sess-1" {
		t.Fatalf("session coupon not cleared: %v", coupons.removed)
	}
}

func TestCheckoutPhonePeRedirect(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{
		name: enums.PaymentGatewayPhonePe,
		result: &payments.CreatePaymentResult{
			Gateway:     enums.PaymentGatewayPhonePe,
			RedirectURL: "https://mercury.phonepe.com/transact/xyz",
		},
	}
	repo := &stubOrdersRepo{}
	svc := newCheckoutService(t, gw, repo, &stubCouponClearer{})

	result, err := svc.Checkout(context.Background(), checkoutInput(enums.PaymentGatewayPhonePe))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RedirectURL == "" {
		t.Fatal("expected redirect url")
	}
	if _, ok := repo.attemptUpdates["gateway_order_id"]; ok {
		t.Fatal("phonepe flow should not record a gateway order id")
	}
}

func TestCheckoutUnknownGatewayRejected(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{name: enums.PaymentGatewayRazorpay}
	svc := newCheckoutService(t, gw, &stubOrdersRepo{}, &stubCouponClearer{})

	_, err := svc.Checkout(context.Background(), checkoutInput(enums.PaymentGatewayPhonePe))
	if err == nil {
		t.Fatal("expected error for unregistered gateway")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCheckoutGatewayFailureMarksAttempt(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{
		name: enums.PaymentGatewayRazorpay,
		err:  pkgerrors.New(pkgerrors.CodeDependency, "gateway down"),
	}
	repo := &stubOrdersRepo{}
	coupons := &stubCouponClearer{}
	svc := newCheckoutService(t, gw, repo, coupons)

	_, err := svc.Checkout(context.Background(), checkoutInput(enums.PaymentGatewayRazorpay))
	if err == nil {
		t.Fatal("expected gateway error to surface")
	}
	if repo.createdOrder == nil {
		t.Fatal("pending order should still be persisted")
	}
	if got := repo.attemptUpdates["status"]; got != enums.PaymentAttemptStatusFailed {
		t.Fatalf("attempt not marked failed, got %v", got)
	}
	if len(coupons.removed) != 0 {
		t.Fatal("coupon must survive a failed checkout")
	}
}

func TestMerchantTxnIDLength(t *testing.T) {
	t.Parallel()

	id := newMerchantTxnID(999999)
	if len(id) > 35 {
		t.Fatalf("merchant txn id too long for phonepe: %q (%d chars)", id, len(id))
	}
	if id[:4] != "TBX-" {
		t.Fatalf("unexpected prefix: %q", id)
	}
	if id == newMerchantTxnID(999999) {
		t.Fatal("merchant txn ids must be unique per attempt")
	}
}
