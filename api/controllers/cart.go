package controllers

import (
	"net/http"

	"github.com/regaloamor/storefront-backend/api/responses"
	"github.com/regaloamor/storefront-backend/api/validators"
	cartsvc "github.com/regaloamor/storefront-backend/internal/cart"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

type cartQuoteRequest struct {
	Items []cartsvc.QuoteItem `json:"items" validate:"required"`
}

// CartQuote reprices the submitted cart against current catalog and shipping
// state. The storefront calls this before checkout so the customer sees the
// totals the server will actually charge.
func CartQuote(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
