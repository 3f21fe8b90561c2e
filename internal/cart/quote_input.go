package cart

import "github.com/google/uuid"

// QuoteItem is one cart line: a product, how many tiffins per delivery,
// and the subscription plan it rides on. An empty PlanID means a single
// one-time delivery.
type QuoteItem struct {
	ProductID          uuid.UUID `json:"product_id" validate:"required"`
	Qty                int       `json:"qty" validate:"required,gt=0,lte=50"`
	PlanID             string    `json:"plan_id" validate:"omitempty,max=40"`
	DurationMultiplier int       `json:"duration_multiplier" validate:"omitempty,gte=1,lte=12"`
}

// QuoteInput is the cart a session wants priced.
type QuoteInput struct {
	SessionID string      `json:"session_id" validate:"required,max=128"`
	Items     []QuoteItem `json:"items" validate:"required,min=1,max=30,dive"`
}
