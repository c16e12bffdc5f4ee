package taxes

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
)

// vatRate is the Chilean IVA applied on gross sales.
var vatRate = decimal.NewFromFloat(1.19)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthlySummary is the tax view of one calendar month. Amounts are CLP.
// Gross is everything collected; net backs out VAT (gross / 1.19, rounded
// half up); VAT is the difference, so the three always reconcile exactly.
type MonthlySummary struct {
	Month      string `json:"mes"`
	GrossCLP   int    `json:"ingresos_brutos"`
	NetCLP     int    `json:"ingresos_netos"`
	VATCLP     int    `json:"iva"`
	OrderCount int    `json:"pedidos"`
	Paid       bool   `json:"pagado"`
	PaidAt     string `json:"pagado_at,omitempty"`
}

// Service produces monthly summaries and records SII payment marks.
type Service interface {
	Summary(ctx context.Context, month string) (*MonthlySummary, error)
	MarkPaid(ctx context.Context, month string) (*MonthlySummary, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax repository required")
	}
	return &service{repo: repo}, nil
}

// SplitVAT derives net and VAT amounts from a gross total.
func SplitVAT(grossCLP int) (netCLP, vatCLP int) {
	net := decimal.NewFromInt(int64(grossCLP)).Div(vatRate).Round(0)
	netCLP = int(net.IntPart())
	return netCLP, grossCLP - netCLP
}

func (s *service) Summary(ctx context.Context, month string) (*MonthlySummary, error) {
	if !monthPattern.MatchString(month) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mes must be formatted YYYY-MM")
	}

	days, err := s.repo.ListDailyMetrics(ctx, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list daily metrics")
	}

	summary := &MonthlySummary{Month: month}
	for _, day := range days {
		summary.GrossCLP += day.RevenueCLP
		summary.OrderCount += day.OrderCount
	}
	summary.NetCLP, summary.VATCLP = SplitVAT(summary.GrossCLP)

	payment, err := s.repo.FindSIIPayment(ctx, month)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sii payment")
		}
		return summary, nil
	}

	summary.Paid = payment.Paid
	if payment.PaidAt != nil {
		summary.PaidAt = payment.PaidAt.UTC().Format(time.RFC3339)
	}
	return summary, nil
}

// MarkPaid records that the month's VAT was declared and paid, snapshotting
// the amount at the moment of marking.
func (s *service) MarkPaid(ctx context.Context, month string) (*MonthlySummary, error) {
	summary, err := s.Summary(ctx, month)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &models.SIIPayment{
		Month:     month,
		AmountCLP: summary.VATCLP,
		Paid:      true,
		PaidAt:    &now,
	}
	if err := s.repo.SaveSIIPayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save sii payment")
	}

	summary.Paid = true
	summary.PaidAt = now.Format(time.RFC3339)
	return summary, nil
}
