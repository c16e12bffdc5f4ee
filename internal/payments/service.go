// Package payments applies gateway confirmation callbacks to orders.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/internal/orders"
	"github.com/regaloamor/storefront-backend/pkg/enums"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/flow"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/metrics"
)

// RevenueRecorder books one confirmed order total into the daily aggregates.
type RevenueRecorder interface {
	RecordRevenue(ctx context.Context, date string, amountCLP int) error
}

// PointsCrediter credits loyalty points to a customer.
type PointsCrediter interface {
	AddPoints(ctx context.Context, customerID uuid.UUID, points int) error
}

// Service processes gateway confirmation callbacks.
type Service interface {
	// HandleConfirmation applies the payment outcome to the referenced
	// order. A nil return means the callback is acknowledged; gateway
	// retries are only wanted for the errors returned here.
	HandleConfirmation(ctx context.Context, commerceOrder, status string) error
}

type service struct {
	orders      *orders.Repository
	revenue     RevenueRecorder
	points      PointsCrediter
	notifier    orders.Notifier
	logg        *logger.Logger
	metrics     *metrics.Registry
	loyaltyRate int
}

func NewService(
	orderRepo *orders.Repository,
	revenue RevenueRecorder,
	points PointsCrediter,
	notifier orders.Notifier,
	logg *logger.Logger,
	reg *metrics.Registry,
	loyaltyRateCLP int,
) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if revenue == nil {
		return nil, fmt.Errorf("revenue recorder required")
	}
	if points == nil {
		return nil, fmt.Errorf("points crediter required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if reg == nil {
		return nil, fmt.Errorf("metrics registry required")
	}
	if loyaltyRateCLP <= 0 {
		return nil, fmt.Errorf("loyalty rate must be positive")
	}
	return &service{
		orders:      orderRepo,
		revenue:     revenue,
		points:      points,
		notifier:    notifier,
		logg:        logg,
		metrics:     reg,
		loyaltyRate: loyaltyRateCLP,
	}, nil
}

// HandleConfirmation resolves the callback against the status machine. The
// pendiente_pago guard on the UPDATE makes replays and concurrent callbacks
// collapse into no-ops: whoever loses the race observes zero affected rows,
// rechecks the stored status and acknowledges.
func (s *service) HandleConfirmation(ctx context.Context, commerceOrder, status string) error {
	orderID, err := uuid.Parse(commerceOrder)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "commerce_order", commerceOrder), "confirmation for malformed order reference, acknowledging")
		return nil
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.orders.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(ctx, "confirmation for unknown order, acknowledging")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}

	target := enums.OrderStatusRejected
	if status == flow.StatusApproved {
		target = enums.OrderStatusPaid
	}

	applied, err := s.orders.TransitionState(ctx, orderID, enums.OrderStatusPendingPayment, target)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply payment outcome")
	}
	if !applied {
		// Replay or concurrent duplicate: the order already left
		// pendiente_pago. The side effects ran exactly once with the
		// winning callback.
		s.logg.Info(s.logg.WithField(ctx, "estado", order.Status.String()), "confirmation replay ignored")
		return nil
	}

	if target == enums.OrderStatusPaid {
		return s.settleApproved(ctx, orderID)
	}

	s.metrics.PaymentsRejected.Inc()
	s.logg.Info(ctx, "payment rejected by gateway")
	return nil
}

// settleApproved runs the paid side effects. The transition already
// committed, so a gateway retry would be swallowed as a replay; failures
// here are logged rather than returned.
func (s *service) settleApproved(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload paid order")
	}

	s.metrics.PaymentsConfirmed.Inc()

	date := time.Now().UTC().Format("2006-01-02")
	if err := s.revenue.RecordRevenue(ctx, date, order.TotalCLP); err != nil {
		s.logg.Error(ctx, "recording confirmed revenue", err)
	}

	points := order.TotalCLP / s.loyaltyRate
	if points < 1 {
		points = 1
	}
	if err := s.points.AddPoints(ctx, order.CustomerID, points); err != nil {
		s.logg.Error(ctx, "crediting loyalty points", err)
	}

	s.notifier.OrderStatusChanged(ctx, order)
	s.logg.Info(ctx, "payment confirmed")
	return nil
}
