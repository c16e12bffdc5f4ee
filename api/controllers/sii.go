package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/regaloamor/storefront-backend/api/responses"
	"github.com/regaloamor/storefront-backend/api/validators"
	taxsvc "github.com/regaloamor/storefront-backend/internal/taxes"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

const monthParamLayout = "2006-01"

// AdminSIISummary reports the month's gross, net and VAT figures. Defaults to
// the current month when ?mes= is absent.
func AdminSIISummary(svc taxsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		month := strings.TrimSpace(r.URL.Query().Get("mes"))
		if month == "" {
			month = time.Now().UTC().Format(monthParamLayout)
		}

		summary, err := svc.Summary(r.Context(), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

type markPaidRequest struct {
	Month string `json:"mes" validate:"required"`
}

// AdminSIIMarkPaid records that the month's VAT was declared and paid.
func AdminSIIMarkPaid(svc taxsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		var payload markPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.MarkPaid(r.Context(), strings.TrimSpace(payload.Month))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
