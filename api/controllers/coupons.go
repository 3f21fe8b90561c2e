package controllers

import (
	"net/http"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	"github.com/rahulvermadev/tiffinbox-backend/api/validators"
	couponsvc "github.com/rahulvermadev/tiffinbox-backend/internal/coupons"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type applyCouponRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Code      string `json:"code" validate:"required,max=64"`
}

type removeCouponRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
}

// CouponApply attaches a coupon to the session. An unknown or expired
// code is not an error; applied=false tells the storefront to show the
// inline rejection, and any previously applied coupon stays in place.
func CouponApply(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := svc.Apply(r.Context(), payload.SessionID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applied": applied, "code": payload.Code})
	}
}

// CouponRemove clears the session coupon. Removing when nothing is
// applied is a no-op.
func CouponRemove(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload removeCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), payload.SessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"removed": true})
	}
}
