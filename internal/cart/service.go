package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/internal/coupons"
	"github.com/rahulvermadev/tiffinbox-backend/internal/pricing"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

// QuoteLine is one priced cart line. Unit and line prices stay decimal
// until the quote is converted for display or persisted to an order.
type QuoteLine struct {
	ProductID          uuid.UUID       `json:"product_id"`
	Name               string          `json:"name"`
	PlanID             string          `json:"plan_id"`
	PlanDays           int             `json:"plan_days"`
	Qty                int             `json:"qty"`
	DurationMultiplier int             `json:"duration_multiplier"`
	UnitPrice          decimal.Decimal `json:"-"`
	LineTotal          decimal.Decimal `json:"-"`
	UnitPricePaise     int64           `json:"unit_price_paise"`
	LineTotalPaise     int64           `json:"line_total_paise"`
}

// Quote is a fully priced cart.
type Quote struct {
	Lines         []QuoteLine     `json:"lines"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	Subtotal      decimal.Decimal `json:"-"`
	Total         decimal.Decimal `json:"-"`
	SubtotalPaise int64           `json:"subtotal_paise"`
	DiscountPaise int64           `json:"discount_paise"`
	TotalPaise    int64           `json:"total_paise"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// planReader is the slice of the pricing repository the cart needs.
type planReader interface {
	FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error)
}

// productReader is the slice of the catalog repository the cart needs.
type productReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// couponReader resolves the session's applied coupon.
type couponReader interface {
	Applied(ctx context.Context, sessionID string) (*models.Coupon, error)
}

// Service prices carts.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

type service struct {
	logg     *logger.Logger
	plans    planReader
	products productReader
	coupons  couponReader
}

// ServiceParams wire the cart service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	Plans    planReader
	Products productReader
	Coupons  couponReader
}

// NewService validates dependencies and builds the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plan reader required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon reader required")
	}
	return &service{
		logg:     params.Logger,
		plans:    params.Plans,
		products: params.Products,
		coupons:  params.Coupons,
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	quote := &Quote{Lines: make([]QuoteLine, 0, len(input.Items))}
	subtotal := decimal.Zero
	planCache := map[string]models.SubscriptionPlan{}

	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not available", item.ProductID))
		}

		plan, warning, err := s.resolvePlan(ctx, item.PlanID, planCache)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			quote.Warnings = append(quote.Warnings, warning)
		}

		multiplier := item.DurationMultiplier
		if multiplier < 1 {
			multiplier = 1
		}
		unit := pricing.DiscountedUnitPrice(product.PriceAmount, plan)
		lineTotal := pricing.SubscriptionTotal(product.PriceAmount, plan, item.Qty, multiplier)
		subtotal = subtotal.Add(lineTotal)

		quote.Lines = append(quote.Lines, QuoteLine{
			ProductID:          product.ID,
			Name:               product.Name,
			PlanID:             plan.ID,
			PlanDays:           plan.DurationDays,
			Qty:                item.Qty,
			DurationMultiplier: multiplier,
			UnitPrice:          unit,
			LineTotal:          lineTotal,
			UnitPricePaise:     pricing.ToPaise(unit),
			LineTotalPaise:     pricing.ToPaise(lineTotal),
		})
	}

	quote.Subtotal = subtotal
	quote.Total = subtotal

	coupon, err := s.coupons.Applied(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if coupon != nil {
		quote.CouponCode = coupon.Code
		quote.Total = coupons.Discounted(subtotal, coupon)
	}

	quote.SubtotalPaise = pricing.ToPaise(quote.Subtotal)
	quote.TotalPaise = pricing.ToPaise(quote.Total)
	quote.DiscountPaise = quote.SubtotalPaise - quote.TotalPaise
	return quote, nil
}

// resolvePlan maps a plan id to its definition. Unknown plan ids degrade
// to a one-time delivery with a warning instead of failing the quote, so
// a stale cart survives a retired plan.
func (s *service) resolvePlan(ctx context.Context, planID string, cache map[string]models.SubscriptionPlan) (models.SubscriptionPlan, string, error) {
	if planID == "" || planID == pricing.OneTimePlan.ID {
		return pricing.OneTimePlan, "", nil
	}
	if plan, ok := cache[planID]; ok {
		return plan, "", nil
	}

	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, pricing.ErrPlanNotFound) {
			logCtx := s.logg.WithFields(ctx, map[string]any{"plan_id": planID})
			s.logg.Warn(logCtx, "unknown plan in cart, pricing as one-time delivery")
			return pricing.OneTimePlan, fmt.Sprintf("plan %q is no longer offered; priced as one-time delivery", planID), nil
		}
		return models.SubscriptionPlan{}, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load subscription plan")
	}

	cache[planID] = *plan
	return *plan, "", nil
}
