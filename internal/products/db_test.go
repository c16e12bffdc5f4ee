package products

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	productos := `
CREATE TABLE IF NOT EXISTS productos (
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
  descripcion TEXT,
  categoria TEXT NOT NULL DEFAULT '',
  precio INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  descuento INTEGER NOT NULL DEFAULT 0,
  imagen_url TEXT,
  activo INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	descuentos := `
CREATE TABLE IF NOT EXISTS producto_descuentos (
  id TEXT PRIMARY KEY,
  producto_id TEXT NOT NULL,
  cantidad INTEGER NOT NULL,
  porcentaje INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(productos).Error)
	require.NoError(t, db.Exec(descuentos).Error)
	return db
}

func mustCreateProduct(t *testing.T, db *gorm.DB, name string, price int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: "personalizados",
		PriceCLP: price,
		Stock:    10,
		Active:   active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func mustCreateTier(t *testing.T, db *gorm.DB, productID uuid.UUID, minQty, percent int) {
	t.Helper()

	tier := &models.ProductQuantityDiscount{
		ID:        uuid.New(),
		ProductID: productID,
		MinQty:    minQty,
		Percent:   percent,
	}
	require.NoError(t, db.Create(tier).Error)
}
