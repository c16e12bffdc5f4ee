package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/enums"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

// Notifier pushes a status change email to the order's customer. Failures are
// the notifier's problem: the transition has already committed.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order)
}

// Service exposes order reads and the admin status transitions.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters) ([]models.Order, error)
	Transition(ctx context.Context, id uuid.UUID, target enums.OrderStatus, notify bool) (*models.Order, error)
}

type service struct {
	repo     *Repository
	notifier Notifier
	logg     *logger.Logger
}

func NewService(repo *Repository, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("order notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Order, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return rows, nil
}

// Transition applies an admin-driven status change. The legality check and
// the guarded UPDATE both run against the status read here; a concurrent
// writer that commits in between simply makes the UPDATE match zero rows.
// When notify is false the status email is suppressed.
func (s *service) Transition(ctx context.Context, id uuid.UUID, target enums.OrderStatus, notify bool) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	// pagado and rechazado are payment outcomes minted by the gateway
	// confirmation, which also runs the revenue and loyalty side effects.
	// Letting the panel set them would skip those effects.
	if target == enums.OrderStatusPaid || target == enums.OrderStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estado reservado al gateway de pago").
			WithDetails(map[string]any{"estado_solicitado": target})
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").
			WithDetails(map[string]any{
				"estado_actual":      order.Status,
				"estado_solicitado":  target,
				"estados_permitidos": NextStatuses(order.Status),
			})
	}

	applied, err := s.repo.TransitionState(ctx, id, order.Status, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: transition order")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}

	ctx = s.logg.WithOrderID(ctx, id.String())
	ctx = s.logg.WithField(ctx, "estado", target.String())
	s.logg.Info(ctx, "order status updated")

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if notify {
		s.notifier.OrderStatusChanged(ctx, updated)
	}

	return updated, nil
}
