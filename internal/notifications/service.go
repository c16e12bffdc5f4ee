package notifications

import (
	"context"
	"fmt"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/mailer"
	"github.com/regaloamor/storefront-backend/pkg/metrics"
)

// Service sends status change emails. It satisfies the notifier hooks of the
// order and payment flows.
type Service struct {
	sender  mailer.Sender
	logg    *logger.Logger
	metrics *metrics.Registry
}

func NewService(sender mailer.Sender, logg *logger.Logger, reg *metrics.Registry) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if reg == nil {
		return nil, fmt.Errorf("metrics registry required")
	}
	return &Service{sender: sender, logg: logg, metrics: reg}, nil
}

// OrderStatusChanged emails the customer about the order's new status. The
// transition has already committed, so every failure here is logged and
// swallowed.
func (s *Service) OrderStatusChanged(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	if order.Customer == nil || order.Customer.Email == "" {
		s.logg.Warn(ctx, "status email skipped: order has no customer email")
		return
	}

	body, ok, err := RenderStatusEmail(order)
	if err != nil {
		s.metrics.EmailsFailed.Inc()
		s.logg.Error(ctx, "rendering status email", err)
		return
	}
	if !ok {
		return
	}

	msg := mailer.Message{
		To:       order.Customer.Email,
		ToName:   order.Customer.Name,
		Subject:  Subject(order.Status, order),
		HTMLBody: body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.EmailsFailed.Inc()
		s.logg.Error(ctx, "sending status email", err)
		return
	}

	s.metrics.EmailsSent.Inc()
	s.logg.Info(ctx, "status email sent")
}
