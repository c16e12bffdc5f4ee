package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/internal/cart"
	"github.com/regaloamor/storefront-backend/internal/customers"
	"github.com/regaloamor/storefront-backend/internal/orders"
	"github.com/regaloamor/storefront-backend/pkg/db"
	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/enums"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/flow"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/metrics"
)

type stubGateway struct {
	calls []flow.PaymentRequest
	fail  error
}

func (g *stubGateway) CreatePayment(ctx context.Context, req flow.PaymentRequest) (*flow.PaymentResponse, error) {
	g.calls = append(g.calls, req)
	if g.fail != nil {
		return nil, g.fail
	}
	return &flow.PaymentResponse{URL: "https://sandbox.flow.cl/app/web/pay.php", Token: "tok123"}, nil
}

type stubProducts struct {
	catalog []models.Product
}

func (s *stubProducts) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.catalog, nil
}

type fixedShipping int

func (f fixedShipping) BaseCostCLP(ctx context.Context) (int, error) { return int(f), nil }

type stubDelivery struct {
	cfg *models.ShippingConfig
}

func (s *stubDelivery) Get(ctx context.Context) (*models.ShippingConfig, error) {
	if s.cfg == nil {
		return &models.ShippingConfig{BaseCostCLP: 3000}, nil
	}
	return s.cfg, nil
}

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
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

func discountedMug() (uuid.UUID, models.Product) {
	id := uuid.New()
	return id, models.Product{
		ID:              id,
		Name:            "Taza personalizada",
		PriceCLP:        10000,
		DiscountPercent: 10,
		Active:          true,
		QuantityDiscounts: []models.ProductQuantityDiscount{
			{MinQty: 3, Percent: 20},
		},
	}
}

func newCheckoutService(t *testing.T, conn *gorm.DB, catalog []models.Product, gateway *stubGateway, delivery DeliveryConfigSource) Service {
	t.Helper()

	carts, err := cart.NewService(&stubProducts{catalog: catalog}, fixedShipping(3000))
	require.NoError(t, err)

	if delivery == nil {
		delivery = &stubDelivery{}
	}

	svc, err := NewService(
		carts,
		delivery,
		customers.NewRepository(conn),
		orders.NewRepository(conn),
		db.NewWithConn(conn),
		gateway,
		logger.New(logger.Options{ServiceName: "test"}),
		metrics.New(),
		"https://regaloamor.cl",
	)
	require.NoError(t, err)
	return svc
}

func validInput(lines []CartLine) SubmitInput {
	return SubmitInput{
		CustomerRUT:    "12.345.678-5",
		CustomerName:   "Maria Perez",
		CustomerEmail:  "maria@example.com",
		PhoneWhatsApp:  "+56911112222",
		Address:        "Av. Siempre Viva 742",
		Commune:        "Providencia",
		DeliveryDate:   "2026-09-05",
		DeliveryWindow: "10:00-13:00",
		Cart:           lines,
	}
}

func TestSubmitCreatesPendingOrderAndPaymentURL(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, nil)

	result, err := svc.Submit(context.Background(), validInput([]CartLine{{ProductID: mugID, Qty: 3}}))
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.flow.cl/app/web/pay.php?token=tok123", result.PaymentURL)
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, result.OrderID, gateway.calls[0].CommerceOrder)
	assert.Equal(t, 24600, gateway.calls[0].AmountCLP)

	repo := orders.NewRepository(conn)
	order, err := repo.FindByID(context.Background(), uuid.MustParse(result.OrderID))
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, 21600, order.SubtotalCLP)
	assert.Equal(t, 3000, order.ShippingCostCLP)
	assert.Equal(t, 24600, order.TotalCLP)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 7200, order.Items[0].UnitPriceCLP)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "12.345.678-5", order.Customer.RUT)
}

func TestSubmitIgnoresClientReportedTotal(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, nil)

	input := validInput([]CartLine{{ProductID: mugID, Qty: 3}})
	input.ReportedTotalCLP = 1

	_, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, 24600, gateway.calls[0].AmountCLP)
}

func TestSubmitEmptyCartNeverTouchesGatewayOrDB(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	gateway := &stubGateway{}
	svc := newCheckoutService(t, conn, nil, gateway, nil)

	_, err := svc.Submit(context.Background(), validInput(nil))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, gateway.calls)

	var orderCount, customerCount int64
	require.NoError(t, conn.Table("pedidos").Count(&orderCount).Error)
	require.NoError(t, conn.Table("clientes").Count(&customerCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, customerCount)
}

func TestSubmitUnknownProductsOnlyIsRejected(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	gateway := &stubGateway{}
	svc := newCheckoutService(t, conn, nil, gateway, nil)

	_, err := svc.Submit(context.Background(), validInput([]CartLine{{ProductID: uuid.New(), Qty: 2}}))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, gateway.calls)
}

func TestSubmitRollsBackOrderOnGatewayFailure(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{fail: errors.New("flow timeout")}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, nil)

	_, err := svc.Submit(context.Background(), validInput([]CartLine{{ProductID: mugID, Qty: 1}}))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	var orderCount, itemCount int64
	require.NoError(t, conn.Table("pedidos").Count(&orderCount).Error)
	require.NoError(t, conn.Table("pedido_items").Count(&itemCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}

func TestSubmitRejectsUnknownDeliveryWindow(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	delivery := &stubDelivery{cfg: &models.ShippingConfig{
		BaseCostCLP: 3000,
		TimeWindows: []string{"10:00-13:00", "15:00-18:00"},
	}}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, delivery)

	input := validInput([]CartLine{{ProductID: mugID, Qty: 1}})
	input.DeliveryWindow = "04:00-06:00"

	_, err := svc.Submit(context.Background(), input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, gateway.calls)
}

func TestSubmitRejectsCommuneWithoutCoverage(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	delivery := &stubDelivery{cfg: &models.ShippingConfig{
		BaseCostCLP: 3000,
		TimeWindows: []string{"10:00-13:00"},
		Communes:    []string{"Providencia", "Ñuñoa"},
	}}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, delivery)

	input := validInput([]CartLine{{ProductID: mugID, Qty: 1}})
	input.Commune = "Arica"

	_, err := svc.Submit(context.Background(), input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, gateway.calls)
}

func TestSubmitAcceptsConfiguredDeliveryIgnoringCase(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	delivery := &stubDelivery{cfg: &models.ShippingConfig{
		BaseCostCLP: 3000,
		TimeWindows: []string{"10:00-13:00"},
		Communes:    []string{"Providencia"},
	}}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, delivery)

	input := validInput([]CartLine{{ProductID: mugID, Qty: 1}})
	input.Commune = "  providencia "

	_, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, gateway.calls, 1)
}

func TestSubmitCopiesWhatsAppToCallPhoneWhenSame(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, nil)

	input := validInput([]CartLine{{ProductID: mugID, Qty: 1}})
	input.PhoneSame = true
	input.PhoneCall = ""

	_, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)

	customer, err := customers.NewRepository(conn).FindByRUT(context.Background(), input.CustomerRUT)
	require.NoError(t, err)
	assert.Equal(t, input.PhoneWhatsApp, customer.PhoneCall)
}

func TestSubmitStoresDesignImageReference(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	mugID, mug := discountedMug()
	gateway := &stubGateway{}
	svc := newCheckoutService(t, conn, []models.Product{mug}, gateway, nil)

	image := "data:image/png;base64,iVBORw0KGgo="
	input := validInput([]CartLine{{ProductID: mugID, Qty: 1}})
	input.ImageBase64 = &image

	result, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)

	order, err := orders.NewRepository(conn).FindByID(context.Background(), uuid.MustParse(result.OrderID))
	require.NoError(t, err)
	require.NotNil(t, order.ImageRef)
	assert.Equal(t, image, *order.ImageRef)
}
