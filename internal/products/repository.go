// Package products manages the storefront catalog: public listings plus the
// admin CRUD surface behind them.
package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

// Repository bundles catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func tiersAscending(db *gorm.DB) *gorm.DB {
	return db.Order("cantidad ASC")
}

// FindByID loads a product with its quantity tiers.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("QuantityDiscounts", tiersAscending).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns the publicly visible catalog, newest first.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("QuantityDiscounts", tiersAscending).
		Where("activo = ?", true).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListAll returns every product, active or not, for the admin panel.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("QuantityDiscounts", tiersAscending).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindActiveByIDs loads the active subset of the requested products with their
// tiers. Missing or inactive IDs are simply absent from the result.
func (r *Repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("QuantityDiscounts", tiersAscending).
		Where("id IN ? AND activo = ?", ids, true).
		Find(&rows).
		Error
	return rows, err
}

// Create inserts a product row together with any attached tiers.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the product row. Tiers are replaced separately.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("QuantityDiscounts").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceQuantityDiscounts swaps all tiers for the product.
func (r *Repository) ReplaceQuantityDiscounts(ctx context.Context, productID uuid.UUID, tiers []models.ProductQuantityDiscount) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("producto_id = ?", productID).Delete(&models.ProductQuantityDiscount{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// Deactivate soft-deletes the product by clearing its active flag. The row
// stays so order snapshots keep a valid reference.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("activo", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
