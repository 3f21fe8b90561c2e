package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	"github.com/rahulvermadev/tiffinbox-backend/api/validators"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type planStore interface {
	List(ctx context.Context) ([]models.SubscriptionPlan, error)
	Upsert(ctx context.Context, plan *models.SubscriptionPlan) error
}

type upsertPlanRequest struct {
	ID              string `json:"id" validate:"required,max=40"`
	Name            string `json:"name" validate:"required,max=80"`
	DurationDays    int    `json:"duration_days" validate:"required,gt=0,lte=365"`
	DiscountPercent string `json:"discount_percent" validate:"required"`
	Active          *bool  `json:"active"`
}

type adminPlanResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DurationDays    int             `json:"duration_days"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Active          bool            `json:"active"`
}

// AdminPlansList returns every plan, inactive tiers included.
func AdminPlansList(store planStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan store unavailable"))
			return
		}

		plans, err := store.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans"))
			return
		}

		out := make([]adminPlanResponse, 0, len(plans))
		for _, plan := range plans {
			out = append(out, newAdminPlanResponse(plan))
		}
		responses.WriteSuccess(w, map[string]any{"plans": out})
	}
}

// AdminPlanUpsert creates or replaces a plan tier by its public id.
func AdminPlanUpsert(store planStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan store unavailable"))
			return
		}

		var payload upsertPlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := decimal.NewFromString(strings.TrimSpace(payload.DiscountPercent))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount percent"))
			return
		}
		if discount.IsNegative() || discount.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be in [0, 100)"))
			return
		}

		plan := models.SubscriptionPlan{
			ID:              strings.ToLower(strings.TrimSpace(payload.ID)),
			Name:            strings.TrimSpace(payload.Name),
			DurationDays:    payload.DurationDays,
			DiscountPercent: discount,
			Active:          true,
		}
		if payload.Active != nil {
			plan.Active = *payload.Active
		}

		if err := store.Upsert(r.Context(), &plan); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert plan"))
			return
		}
		responses.WriteSuccess(w, newAdminPlanResponse(plan))
	}
}

func newAdminPlanResponse(plan models.SubscriptionPlan) adminPlanResponse {
	return adminPlanResponse{
		ID:              plan.ID,
		Name:            plan.Name,
		DurationDays:    plan.DurationDays,
		DiscountPercent: plan.DiscountPercent,
		Active:          plan.Active,
	}
}
