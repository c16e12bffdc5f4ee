package controllers

import (
	"net/http"

	"github.com/regaloamor/storefront-backend/api/responses"
	"github.com/regaloamor/storefront-backend/api/validators"
	authsvc "github.com/regaloamor/storefront-backend/internal/auth"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

// AdminLogin wires the panel login endpoint into the HTTP layer.
func AdminLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body authsvc.LoginRequest
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
