package orders

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	clientes := `
CREATE TABLE IF NOT EXISTS clientes (
  id TEXT PRIMARY KEY,
  rut TEXT NOT NULL UNIQUE,
  nombre TEXT NOT NULL,
  email TEXT NOT NULL,
  telefono_wsp TEXT NOT NULL DEFAULT '',
  telefono_llamada TEXT NOT NULL DEFAULT '',
  direccion TEXT NOT NULL DEFAULT '',
  comuna TEXT NOT NULL DEFAULT '',
  puntos INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	pedidos := `
CREATE TABLE IF NOT EXISTS pedidos (
  id TEXT PRIMARY KEY,
  cliente_id TEXT NOT NULL,
  estado TEXT NOT NULL DEFAULT 'pendiente_pago',
  subtotal INTEGER NOT NULL,
  costo_envio INTEGER NOT NULL,
  total INTEGER NOT NULL,
  fecha_envio TEXT NOT NULL DEFAULT '',
  horario_envio TEXT NOT NULL DEFAULT '',
  direccion TEXT NOT NULL DEFAULT '',
  comuna TEXT NOT NULL DEFAULT '',
  mensaje_personalizacion TEXT,
  tipo_diseno TEXT,
  imagen_ref TEXT,
  estado_cambiado_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS pedido_items (
  id TEXT PRIMARY KEY,
  pedido_id TEXT NOT NULL,
  producto_id TEXT,
  nombre TEXT NOT NULL,
  cantidad INTEGER NOT NULL,
  precio_unitario INTEGER NOT NULL,
  total INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(clientes).Error)
	require.NoError(t, db.Exec(pedidos).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func mustCreateCustomer(t *testing.T, db *gorm.DB) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		ID:    uuid.New(),
		RUT:   fmt.Sprintf("1.111.111-%d", len(t.Name())%10),
		Name:  "Cliente Prueba",
		Email: "cliente@example.com",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func mustCreateOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, status enums.OrderStatus, total int) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Status:          status,
		SubtotalCLP:     total - 3000,
		ShippingCostCLP: 3000,
		TotalCLP:        total,
		Address:         "Av. Siempre Viva 742",
		Commune:         "Providencia",
		StatusChangedAt: time.Now().UTC(),
	}
	order.Items = []models.OrderLineItem{{
		ID:           uuid.New(),
		Name:         "Taza personalizada",
		Qty:          1,
		UnitPriceCLP: total - 3000,
		TotalCLP:     total - 3000,
	}}
	require.NoError(t, db.Create(order).Error)
	return order
}
