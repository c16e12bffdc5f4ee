package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/internal/orders"
	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/enums"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/metrics"
)

type recordedRevenue struct {
	date   string
	amount int
}

type stubRevenue struct {
	records []recordedRevenue
	fail    error
}

func (s *stubRevenue) RecordRevenue(ctx context.Context, date string, amountCLP int) error {
	if s.fail != nil {
		return s.fail
	}
	s.records = append(s.records, recordedRevenue{date: date, amount: amountCLP})
	return nil
}

type creditedPoints struct {
	customerID uuid.UUID
	points     int
}

type stubPoints struct {
	credits []creditedPoints
}

func (s *stubPoints) AddPoints(ctx context.Context, customerID uuid.UUID, points int) error {
	s.credits = append(s.credits, creditedPoints{customerID: customerID, points: points})
	return nil
}

type recordingNotifier struct {
	notified []*models.Order
}

func (n *recordingNotifier) OrderStatusChanged(ctx context.Context, order *models.Order) {
	n.notified = append(n.notified, order)
}

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{
		`CREATE TABLE IF NOT EXISTS clientes (
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
);`,
		`CREATE TABLE IF NOT EXISTS pedidos (
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
);`,
		`CREATE TABLE IF NOT EXISTS pedido_items (
  id TEXT PRIMARY KEY,
  pedido_id TEXT NOT NULL,
  producto_id TEXT,
  nombre TEXT NOT NULL,
  cantidad INTEGER NOT NULL,
  precio_unitario INTEGER NOT NULL,
  total INTEGER NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, conn.Exec(schema).Error)
	}
	return conn
}

type paymentsFixture struct {
	svc      Service
	repo     *orders.Repository
	revenue  *stubRevenue
	points   *stubPoints
	notifier *recordingNotifier
}

func newPaymentsFixture(t *testing.T, conn *gorm.DB) *paymentsFixture {
	t.Helper()

	f := &paymentsFixture{
		repo:     orders.NewRepository(conn),
		revenue:  &stubRevenue{},
		points:   &stubPoints{},
		notifier: &recordingNotifier{},
	}
	svc, err := NewService(
		f.repo,
		f.revenue,
		f.points,
		f.notifier,
		logger.New(logger.Options{ServiceName: "test"}),
		metrics.New(),
		10000,
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func createPendingOrder(t *testing.T, conn *gorm.DB, total int) *models.Order {
	t.Helper()

	customer := &models.Customer{ID: uuid.New(), RUT: "12.345.678-5", Name: "Maria", Email: "maria@example.com"}
	require.NoError(t, conn.Create(customer).Error)

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		Status:          enums.OrderStatusPendingPayment,
		SubtotalCLP:     total - 3000,
		ShippingCostCLP: 3000,
		TotalCLP:        total,
		StatusChangedAt: time.Now().UTC(),
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestHandleConfirmationApproved(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	f := newPaymentsFixture(t, conn)
	order := createPendingOrder(t, conn, 24600)

	require.NoError(t, f.svc.HandleConfirmation(context.Background(), order.ID.String(), "1"))

	reloaded, err := f.repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, reloaded.Status)

	require.Len(t, f.revenue.records, 1)
	assert.Equal(t, 24600, f.revenue.records[0].amount)

	require.Len(t, f.points.credits, 1)
	assert.Equal(t, order.CustomerID, f.points.credits[0].customerID)
	assert.Equal(t, 2, f.points.credits[0].points)

	require.Len(t, f.notifier.notified, 1)
	assert.Equal(t, enums.OrderStatusPaid, f.notifier.notified[0].Status)
}

func TestHandleConfirmationRejected(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	f := newPaymentsFixture(t, conn)
	order := createPendingOrder(t, conn, 12000)

	require.NoError(t, f.svc.HandleConfirmation(context.Background(), order.ID.String(), "2"))

	reloaded, err := f.repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRejected, reloaded.Status)
	assert.Empty(t, f.revenue.records)
	assert.Empty(t, f.points.credits)
	assert.Empty(t, f.notifier.notified)
}

func TestHandleConfirmationReplayIsIdempotent(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	f := newPaymentsFixture(t, conn)
	order := createPendingOrder(t, conn, 24600)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleConfirmation(ctx, order.ID.String(), "1"))
	require.NoError(t, f.svc.HandleConfirmation(ctx, order.ID.String(), "1"))
	require.NoError(t, f.svc.HandleConfirmation(ctx, order.ID.String(), "2"))

	reloaded, err := f.repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, reloaded.Status)

	// Side effects ran exactly once.
	assert.Len(t, f.revenue.records, 1)
	assert.Len(t, f.points.credits, 1)
	assert.Len(t, f.notifier.notified, 1)
}

func TestHandleConfirmationSmallOrderStillEarnsOnePoint(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	f := newPaymentsFixture(t, conn)
	order := createPendingOrder(t, conn, 7990)

	require.NoError(t, f.svc.HandleConfirmation(context.Background(), order.ID.String(), "1"))

	require.Len(t, f.points.credits, 1)
	assert.Equal(t, 1, f.points.credits[0].points)
}

func TestHandleConfirmationUnknownOrderIsAcknowledged(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	f := newPaymentsFixture(t, conn)

	require.NoError(t, f.svc.HandleConfirmation(context.Background(), uuid.NewString(), "1"))
	require.NoError(t, f.svc.HandleConfirmation(context.Background(), "not-a-uuid", "1"))
	assert.Empty(t, f.revenue.records)
}

func TestHandleConfirmationRevenueFailureDoesNotBlockAck(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	f := newPaymentsFixture(t, conn)
	f.revenue.fail = errors.New("metrics db down")
	order := createPendingOrder(t, conn, 24600)

	err := f.svc.HandleConfirmation(context.Background(), order.ID.String(), "1")
	require.NoError(t, err)
	require.Nil(t, pkgerrors.As(err))

	reloaded, loadErr := f.repo.FindByID(context.Background(), order.ID)
	require.NoError(t, loadErr)
	assert.Equal(t, enums.OrderStatusPaid, reloaded.Status)
}
