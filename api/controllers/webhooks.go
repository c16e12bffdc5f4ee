package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/regaloamor/storefront-backend/api/responses"
	paymentsvc "github.com/regaloamor/storefront-backend/internal/payments"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

type flowConfirmationPayload struct {
	CommerceOrder string `json:"commerceOrder"`
	Status        string `json:"status"`
}

// FlowConfirmation consumes the gateway's asynchronous payment callback. Flow
// posts form-encoded fields; JSON is accepted too for manual replays. The
// gateway only needs a 200 with a bare body, and it retries on anything else,
// so errors surface only when the transition genuinely failed to persist.
func FlowConfirmation(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		payload, err := decodeFlowPayload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.HandleConfirmation(r.Context(), payload.CommerceOrder, payload.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// FlowReturn is the browser redirect target after the customer leaves the
// gateway. It just hands the token back so the storefront can poll the order.
func FlowReturn(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			if err := r.ParseForm(); err == nil {
				token = strings.TrimSpace(r.PostFormValue("token"))
			}
		}

		responses.WriteSuccess(w, map[string]string{"token": token})
	}
}

func decodeFlowPayload(r *http.Request) (flowConfirmationPayload, error) {
	var payload flowConfirmationPayload

	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return payload, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid confirmation body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return payload, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid confirmation form")
		}
		payload.CommerceOrder = r.PostFormValue("commerceOrder")
		payload.Status = r.PostFormValue("status")
	}

	payload.CommerceOrder = strings.TrimSpace(payload.CommerceOrder)
	payload.Status = strings.TrimSpace(payload.Status)

	if payload.CommerceOrder == "" {
		return payload, pkgerrors.New(pkgerrors.CodeValidation, "commerceOrder is required")
	}
	return payload, nil
}
