package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	"github.com/rahulvermadev/tiffinbox-backend/api/validators"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type couponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type createCouponRequest struct {
	Code      string     `json:"code" validate:"required,max=64"`
	Type      string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value     string     `json:"value" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
	Active    *bool      `json:"active"`
}

type updateCouponRequest struct {
	Value     *string    `json:"value"`
	ExpiresAt *time.Time `json:"expires_at"`
	Active    *bool      `json:"active"`
}

type couponResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

func AdminCouponsList(store couponStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon store unavailable"))
			return
		}

		coupons, err := store.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons"))
			return
		}

		out := make([]couponResponse, 0, len(coupons))
		for _, coupon := range coupons {
			out = append(out, newCouponResponse(coupon))
		}
		responses.WriteSuccess(w, map[string]any{"coupons": out})
	}
}

func AdminCouponCreate(store couponStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon store unavailable"))
			return
		}

		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value, err := parseCouponValue(payload.Value, enums.CouponType(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon := models.Coupon{
			Code:      strings.TrimSpace(payload.Code),
			Type:      enums.CouponType(payload.Type),
			Value:     value,
			ExpiresAt: payload.ExpiresAt,
			Active:    true,
		}
		if payload.Active != nil {
			coupon.Active = *payload.Active
		}

		if err := store.Create(r.Context(), &coupon); err != nil {
			if db.IsUniqueViolation(err, "") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon code already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(coupon))
	}
}

func AdminCouponUpdate(store couponStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon store unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := store.FindByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon"))
			return
		}
		if coupon == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found"))
			return
		}

		if payload.Value != nil {
			value, err := parseCouponValue(*payload.Value, coupon.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			coupon.Value = value
		}
		if payload.ExpiresAt != nil {
			coupon.ExpiresAt = payload.ExpiresAt
		}
		if payload.Active != nil {
			coupon.Active = *payload.Active
		}

		if err := store.Update(r.Context(), coupon); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon"))
			return
		}
		responses.WriteSuccess(w, newCouponResponse(*coupon))
	}
}

func AdminCouponDelete(store couponStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon store unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}

		coupon, err := store.FindByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon"))
			return
		}
		if coupon == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found"))
			return
		}

		if err := store.Delete(r.Context(), coupon.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

func parseCouponValue(raw string, couponType enums.CouponType) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon value")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if couponType == enums.CouponTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percentage coupon cannot exceed 100")
	}
	return value, nil
}

func newCouponResponse(coupon models.Coupon) couponResponse {
	return couponResponse{
		ID:        coupon.ID,
		Code:      coupon.Code,
		Type:      string(coupon.Type),
		Value:     coupon.Value,
		ExpiresAt: coupon.ExpiresAt,
		Active:    coupon.Active,
		CreatedAt: coupon.CreatedAt,
	}
}
