package controllers

import (
	"net/http"

	"github.com/regaloamor/storefront-backend/api/responses"
	"github.com/regaloamor/storefront-backend/api/validators"
	checkoutsvc "github.com/regaloamor/storefront-backend/internal/checkout"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/types"
)

// SubmitOrder runs the full order submission: reprice, persist, create the
// gateway payment, hand back the redirect URL. Responses use the flat
// storefront shape rather than the data envelope.
func SubmitOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.SubmitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), payload)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}

		responses.WriteStorefront(w, http.StatusCreated, types.StorefrontAck{
			OK:         true,
			PaymentURL: result.PaymentURL,
			OrderID:    result.OrderID,
		})
	}
}
