// Package shipping owns the delivery configuration: open days, delivery
// windows, served communes, and the flat shipping cost.
package shipping

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

// singletonID pins the one and only configuration row.
const singletonID = 1

// Repository persists the shipping configuration singleton.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the configuration row.
func (r *Repository) Get(ctx context.Context) (*models.ShippingConfig, error) {
	var cfg models.ShippingConfig
	if err := r.db.WithContext(ctx).First(&cfg, "id = ?", singletonID).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save upserts the configuration row, forcing the singleton ID.
func (r *Repository) Save(ctx context.Context, cfg *models.ShippingConfig) (*models.ShippingConfig, error) {
	cfg.ID = singletonID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(cfg).
		Error
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
