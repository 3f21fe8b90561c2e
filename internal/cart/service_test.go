package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/internal/pricing"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type stubPlanReader struct {
	plans map[string]models.SubscriptionPlan
}

func (s *stubPlanReader) FindByID(_ context.Context, id string) (*models.SubscriptionPlan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, pricing.ErrPlanNotFound
	}
	return &plan, nil
}

type stubProductReader struct {
	products []models.Product
}

func (s *stubProductReader) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}

type stubCouponReader struct {
	coupon *models.Coupon
}

func (s *stubCouponReader) Applied(context.Context, string) (*models.Coupon, error) {
	return s.coupon, nil
}

func newQuoteService(t *testing.T, products []models.Product, coupon *models.Coupon) Service {
	t.Helper()

	plans := &stubPlanReader{plans: map[string]models.SubscriptionPlan{
		"weekly": {
			ID:              "weekly",
			Name:            "Weekly",
			DurationDays:    7,
			DiscountPercent: decimal.NewFromInt(10),
			Active:          true,
		},
	}}
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Plans:    plans,
		Products: &stubProductReader{products: products},
		Coupons:  &stubCouponReader{coupon: coupon},
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func thali(price int64) models.Product {
	return models.Product{
		ID:          uuid.New(),
		Name:        "Veg Thali",
		Slug:        "veg-thali",
		Category:    "thali",
		PriceAmount: decimal.NewFromInt(price),
		Available:   true,
	}
}

func TestQuoteWeeklySubscription(t *testing.T) {
	t.Parallel()

	product := thali(100)
	svc := newQuoteService(t, []models.Product{product}, nil)

	// 100 base, weekly plan (7 days, 10% off), qty 2:
	// 100 * 0.90 * 7 * 2 = 1260.
	quote, err := svc.Quote(context.Background(), QuoteInput{
		SessionID: "sess-1",
		Items: []QuoteItem{
			{ProductID: product.ID, Qty: 2, PlanID: "weekly"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Subtotal.Equal(decimal.NewFromInt(1260)) {
		t.Fatalf("subtotal = %s, want 1260", quote.Subtotal)
	}
	if quote.TotalPaise != 126000 {
		t.Fatalf("total = %d paise, want 126000", quote.TotalPaise)
	}
	if len(quote.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", quote.Warnings)
	}

	line := quote.Lines[0]
	if !line.UnitPrice.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unit price = %s, want 90", line.UnitPrice)
	}
	if line.PlanDays != 7 {
		t.Fatalf("plan days = %d, want 7", line.PlanDays)
	}
}

func TestQuoteWithFlatCoupon(t *testing.T) {
	t.Parallel()

	product := thali(100)
	coupon := &models.Coupon{
		ID:     uuid.New(),
		Code:   "TIFFIN50",
		Type:   enums.CouponTypeFixed,
		Value:  decimal.NewFromInt(50),
		Active: true,
	}
	svc := newQuoteService(t, []models.Product{product}, coupon)

	// 1260 minus the flat 50 coupon = 1210.
	quote, err := svc.Quote(context.Background(), QuoteInput{
		SessionID: "sess-1",
		Items: []QuoteItem{
			{ProductID: product.ID, Qty: 2, PlanID: "weekly"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Total.Equal(decimal.NewFromInt(1210)) {
		t.Fatalf("total = %s, want 1210", quote.Total)
	}
	if quote.TotalPaise != 121000 {
		t.Fatalf("total = %d paise, want 121000", quote.TotalPaise)
	}
	if quote.DiscountPaise != 5000 {
		t.Fatalf("discount = %d paise, want 5000", quote.DiscountPaise)
	}
	if quote.CouponCode != "TIFFIN50" {
		t.Fatalf("coupon code = %q, want TIFFIN50", quote.CouponCode)
	}
}

func TestQuoteUnknownPlanFallsBackToOneTime(t *testing.T) {
	t.Parallel()

	product := thali(100)
	svc := newQuoteService(t, []models.Product{product}, nil)

	quote, err := svc.Quote(context.Background(), QuoteInput{
		SessionID: "sess-1",
		Items: []QuoteItem{
			{ProductID: product.ID, Qty: 2, PlanID: "retired-plan"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Full price, one day: 100 * 2 = 200.
	if !quote.Total.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total = %s, want 200", quote.Total)
	}
	if len(quote.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", quote.Warnings)
	}
	if quote.Lines[0].PlanID != pricing.OneTimePlan.ID {
		t.Fatalf("line plan = %q, want %q", quote.Lines[0].PlanID, pricing.OneTimePlan.ID)
	}
}

func TestQuoteUnavailableProductRejected(t *testing.T) {
	t.Parallel()

	product := thali(100)
	product.Available = false
	svc := newQuoteService(t, []models.Product{product}, nil)

	_, err := svc.Quote(context.Background(), QuoteInput{
		SessionID: "sess-1",
		Items:     []QuoteItem{{ProductID: product.ID, Qty: 1}},
	})
	if err == nil {
		t.Fatal("expected error for unavailable product")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestQuoteEmptyCartRejected(t *testing.T) {
	t.Parallel()

	svc := newQuoteService(t, nil, nil)
	if _, err := svc.Quote(context.Background(), QuoteInput{SessionID: "sess-1"}); err == nil {
		t.Fatal("expected error for empty cart")
	}
}
