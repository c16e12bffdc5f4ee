// Package customers persists buyer identities keyed by RUT.
package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

// Repository persists customer rows.
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

// FindByID loads one customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByRUT loads one customer by tax ID.
func (r *Repository) FindByRUT(ctx context.Context, rut string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "rut = ?", rut).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpsertByRUT creates the customer or refreshes contact data on conflict.
// Loyalty points are never touched here; only paid orders credit them.
func (r *Repository) UpsertByRUT(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "rut"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"nombre", "email", "telefono_wsp", "telefono_llamada", "direccion", "comuna", "updated_at",
			}),
		}).
		Create(customer).
		Error
	if err != nil {
		return nil, err
	}
	return r.FindByRUT(ctx, customer.RUT)
}

// AddPoints credits loyalty points atomically.
func (r *Repository) AddPoints(ctx context.Context, id uuid.UUID, points int) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Update("puntos", gorm.Expr("puntos + ?", points)).
		Error
}

// List returns all customers, newest first, for the admin panel.
func (r *Repository) List(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}
