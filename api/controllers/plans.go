package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type activePlanLister interface {
	ListActive(ctx context.Context) ([]models.SubscriptionPlan, error)
}

type planResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DurationDays    int             `json:"duration_days"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// PlansList serves the active subscription tiers the storefront can offer.
func PlansList(repo activePlanLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan repository unavailable"))
			return
		}

		plans, err := repo.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans"))
			return
		}

		out := make([]planResponse, 0, len(plans))
		for _, plan := range plans {
			out = append(out, planResponse{
				ID:              plan.ID,
				Name:            plan.Name,
				DurationDays:    plan.DurationDays,
				DiscountPercent: plan.DiscountPercent,
			})
		}
		responses.WriteSuccess(w, map[string]any{"plans": out})
	}
}
