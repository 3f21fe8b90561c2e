package controllers

import (
	"net/http"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	"github.com/rahulvermadev/tiffinbox-backend/api/validators"
	"github.com/rahulvermadev/tiffinbox-backend/internal/auth"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

// AdminAuthLogin wires the admin login endpoint into the HTTP layer.
func AdminAuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
