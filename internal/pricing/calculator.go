package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// OneTimePlan is the documented fallback when a cart references a plan id
// that no longer exists: a single delivery at full price. Callers decide
// whether to apply it or reject the cart; the calculator never substitutes
// it on its own.
var OneTimePlan = models.SubscriptionPlan{
	ID:           "one_time",
	Name:         "One-time delivery",
	DurationDays: 1,
	Active:       true,
}

// DiscountedUnitPrice returns the per-delivery price after the plan
// discount. No rounding is applied; display layers round to two decimals.
func DiscountedUnitPrice(price decimal.Decimal, plan models.SubscriptionPlan) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(plan.DiscountPercent.Div(hundred))
	return price.Mul(factor)
}

// SubscriptionTotal prices a line: discounted unit price times plan
// duration, quantity, and the duration multiplier (number of plan cycles,
// at least 1).
func SubscriptionTotal(basePrice decimal.Decimal, plan models.SubscriptionPlan, qty, durationMultiplier int) decimal.Decimal {
	if qty < 0 {
		qty = 0
	}
	if durationMultiplier < 1 {
		durationMultiplier = 1
	}
	days := plan.DurationDays
	if days < 1 {
		days = 1
	}
	return DiscountedUnitPrice(basePrice, plan).
		Mul(decimal.NewFromInt(int64(days))).
		Mul(decimal.NewFromInt(int64(qty))).
		Mul(decimal.NewFromInt(int64(durationMultiplier)))
}

// ToPaise converts a rupee amount into whole paise, rounding half up.
// This is the only place pricing output is rounded.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
