package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/enums"
)

// ListFilters narrows admin order listings.
type ListFilters struct {
	Status *enums.OrderStatus
	From   *time.Time
	To     *time.Time
}

// Repository persists orders and their snapshot line items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes an order and, via FK cascade, its items. Used only to roll
// back a submission whose payment order could not be created at the gateway.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("pedido_id = ?", id).Delete(&models.OrderLineItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Order{}).Error
}

// FindByID loads an order with its items and customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first, optionally filtered by status and a
// creation date range.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Order, error) {
	qb := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer")

	if filters.Status != nil {
		qb = qb.Where("estado = ?", *filters.Status)
	}
	if filters.From != nil {
		qb = qb.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		// To is an exclusive upper bound; callers pass the start of the
		// day after the last day they want included.
		qb = qb.Where("created_at < ?", *filters.To)
	}

	var rows []models.Order
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// TransitionState moves the order from one status to another with a guarded
// UPDATE. The WHERE clause on the current status makes concurrent transitions
// race safely: exactly one writer sees applied=true, the rest lose the row.
func (r *Repository) TransitionState(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND estado = ?", id, from).
		Updates(map[string]any{
			"estado":             to,
			"estado_cambiado_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindByIDForUpdate reloads the order without associations, for status checks.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
