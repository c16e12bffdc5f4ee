package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/regaloamor/storefront-backend/api/responses"
	"github.com/regaloamor/storefront-backend/api/validators"
	ordersvc "github.com/regaloamor/storefront-backend/internal/orders"
	"github.com/regaloamor/storefront-backend/pkg/enums"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

const dateParamLayout = "2006-01-02"

// OrderLookup serves the customer-facing status page. The order id doubles as
// the lookup secret, so the full order is returned.
func OrderLookup(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminListOrders lists orders for the panel, optionally filtered by estado
// and a created_at date range (desde/hasta, YYYY-MM-DD).
func AdminListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

func AdminOrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type transitionRequest struct {
	Status string `json:"estado" validate:"required"`
	// SendEmail suppresses the status notification when explicitly false.
	SendEmail *bool `json:"enviarEmail"`
}

// AdminTransitionOrder applies one admin-driven status change.
func AdminTransitionOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		notify := payload.SendEmail == nil || *payload.SendEmail
		order, err := svc.Transition(r.Context(), id, target, notify)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func parseListFilters(r *http.Request) (ordersvc.ListFilters, error) {
	filters := ordersvc.ListFilters{}
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("estado")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid estado filter")
		}
		filters.Status = &status
	}

	if raw := strings.TrimSpace(query.Get("desde")); raw != "" {
		from, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid desde filter")
		}
		filters.From = &from
	}

	if raw := strings.TrimSpace(query.Get("hasta")); raw != "" {
		to, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid hasta filter")
		}
		// The filter is inclusive of the named day.
		end := to.Add(24 * time.Hour)
		filters.To = &end
	}

	return filters, nil
}
