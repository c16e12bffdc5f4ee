// Package taxes tracks confirmed revenue per day and the monthly VAT
// estimates declared to the SII.
package taxes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

// Repository persists daily revenue rows and SII payment marks.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordRevenue adds one confirmed order's total to the day's aggregate,
// creating the row on first confirmation of the day. Date format is
// YYYY-MM-DD.
func (r *Repository) RecordRevenue(ctx context.Context, date string, amountCLP int) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "fecha"}},
			DoUpdates: clause.Assignments(map[string]any{
				"ingresos":   gorm.Expr("ingresos + ?", amountCLP),
				"pedidos":    gorm.Expr("pedidos + 1"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(&models.DailyMetric{
			ID:         uuid.New(),
			Date:       date,
			RevenueCLP: amountCLP,
			OrderCount: 1,
		}).
		Error
}

// ListDailyMetrics returns the aggregates for a month (YYYY-MM), oldest first.
func (r *Repository) ListDailyMetrics(ctx context.Context, month string) ([]models.DailyMetric, error) {
	var rows []models.DailyMetric
	err := r.db.WithContext(ctx).
		Where("fecha LIKE ?", month+"%").
		Order("fecha ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindSIIPayment loads the month's payment mark, if any.
func (r *Repository) FindSIIPayment(ctx context.Context, month string) (*models.SIIPayment, error) {
	var row models.SIIPayment
	if err := r.db.WithContext(ctx).First(&row, "mes = ?", month).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveSIIPayment upserts the month's payment mark.
func (r *Repository) SaveSIIPayment(ctx context.Context, payment *models.SIIPayment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mes"}},
			DoUpdates: clause.AssignmentColumns([]string{"monto", "pagado", "pagado_at"}),
		}).
		Create(payment).
		Error
}
