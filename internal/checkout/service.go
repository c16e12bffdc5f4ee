// Package checkout turns a cart submission into a pending order and a
// gateway payment URL.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// PaymentGateway registers a collection attempt and yields the redirect URL.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req flow.PaymentRequest) (*flow.PaymentResponse, error)
}

// DeliveryConfigSource yields the configured delivery schedule used to check
// the customer's chosen window and commune.
type DeliveryConfigSource interface {
	Get(ctx context.Context) (*models.ShippingConfig, error)
}

// CartLine is one submitted carrito entry. The name and unit price are the
// client's display values; billing always reprices from the catalog.
type CartLine struct {
	ProductID uuid.UUID `json:"id"`
	Name      string    `json:"nombre"`
	Qty       int       `json:"cantidad"`
	PriceCLP  int       `json:"precio"`
}

// SubmitInput is the validated order submission payload, keyed the way the
// storefront sends it.
type SubmitInput struct {
	Cart []CartLine `json:"carrito" validate:"required"`

	// ReportedTotalCLP is what the client believes the order costs. It is
	// advisory only: the charge always uses the server-computed total.
	ReportedTotalCLP int `json:"total"`

	CustomerName  string `json:"nombre" validate:"required"`
	CustomerRUT   string `json:"rut" validate:"required"`
	CustomerEmail string `json:"email" validate:"required,email"`
	Address       string `json:"direccion" validate:"required"`
	Commune       string `json:"comuna" validate:"required"`
	PhoneWhatsApp string `json:"telefonoWsp"`
	PhoneCall     string `json:"telefonoLlamada"`
	// PhoneSame means the call number is the WhatsApp number.
	PhoneSame bool `json:"telefonoEsMismo"`

	DeliveryDate   string `json:"fechaEnvio"`
	DeliveryWindow string `json:"horarioEnvio"`

	Message     *string `json:"mensajePersonalizacion"`
	DesignType  *string `json:"tipoDiseno"`
	ImageBase64 *string `json:"imagenBase64"`
}

func (in SubmitInput) quoteItems() []cart.QuoteItem {
	items := make([]cart.QuoteItem, 0, len(in.Cart))
	for _, line := range in.Cart {
		items = append(items, cart.QuoteItem{ProductID: line.ProductID, Qty: line.Qty})
	}
	return items
}

// SubmitResult points the customer at the gateway.
type SubmitResult struct {
	OrderID    string `json:"pedidoId"`
	PaymentURL string `json:"urlPago"`
	Token      string `json:"token"`
}

// Service runs order submissions end to end.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
}

type service struct {
	carts     cart.Service
	delivery  DeliveryConfigSource
	customers *customers.Repository
	orders    *orders.Repository
	dbClient  *db.Client
	gateway   PaymentGateway
	logg      *logger.Logger
	metrics   *metrics.Registry
	baseURL   string
}

func NewService(
	carts cart.Service,
	delivery DeliveryConfigSource,
	customerRepo *customers.Repository,
	orderRepo *orders.Repository,
	dbClient *db.Client,
	gateway PaymentGateway,
	logg *logger.Logger,
	reg *metrics.Registry,
	baseURL string,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if delivery == nil {
		return nil, fmt.Errorf("delivery config source required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if reg == nil {
		return nil, fmt.Errorf("metrics registry required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("public base url required")
	}
	return &service{
		carts:     carts,
		delivery:  delivery,
		customers: customerRepo,
		orders:    orderRepo,
		dbClient:  dbClient,
		gateway:   gateway,
		logg:      logg,
		metrics:   reg,
		baseURL:   baseURL,
	}, nil
}

// Submit prices the cart server-side, persists the customer and a
// pendiente_pago order, and registers the payment with the gateway. A cart
// that prices to empty never reaches the database or the gateway. If the
// gateway call fails the order row is removed again: unpaid ghost orders must
// not accumulate.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	ctx = s.logg.WithCustomerRUT(ctx, input.CustomerRUT)

	if err := s.validateDelivery(ctx, input); err != nil {
		return nil, err
	}

	quote, err := s.carts.Quote(ctx, input.quoteItems())
	if err != nil {
		return nil, err
	}
	if len(quote.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el carrito está vacío")
	}

	if input.ReportedTotalCLP != 0 && input.ReportedTotalCLP != quote.TotalCLP {
		divergenceCtx := s.logg.WithFields(ctx, map[string]any{
			"total_cliente":  input.ReportedTotalCLP,
			"total_servidor": quote.TotalCLP,
		})
		s.logg.Warn(divergenceCtx, "client total diverges from server total; using server total")
	}

	phoneCall := input.PhoneCall
	if input.PhoneSame {
		phoneCall = input.PhoneWhatsApp
	}

	var order *models.Order
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customers.WithTx(tx).UpsertByRUT(ctx, &models.Customer{
			RUT:           input.CustomerRUT,
			Name:          input.CustomerName,
			Email:         input.CustomerEmail,
			PhoneWhatsApp: input.PhoneWhatsApp,
			PhoneCall:     phoneCall,
			Address:       input.Address,
			Commune:       input.Commune,
		})
		if err != nil {
			return err
		}

		order = &models.Order{
			ID:              uuid.New(),
			CustomerID:      customer.ID,
			Status:          enums.OrderStatusPendingPayment,
			SubtotalCLP:     quote.SubtotalCLP,
			ShippingCostCLP: quote.ShippingCLP,
			TotalCLP:        quote.TotalCLP,
			DeliveryDate:    input.DeliveryDate,
			DeliveryWindow:  input.DeliveryWindow,
			Address:         input.Address,
			Commune:         input.Commune,
			Message:         input.Message,
			DesignType:      input.DesignType,
			ImageRef:        input.ImageBase64,
			StatusChangedAt: time.Now().UTC(),
		}
		for _, line := range quote.Lines {
			productID := line.ProductID
			order.Items = append(order.Items, models.OrderLineItem{
				ID:           uuid.New(),
				ProductID:    &productID,
				Name:         line.Name,
				Qty:          line.Qty,
				UnitPriceCLP: line.UnitPriceCLP,
				TotalCLP:     line.TotalCLP,
			})
		}

		_, err = s.orders.WithTx(tx).Create(ctx, order)
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	payment, err := s.gateway.CreatePayment(ctx, flow.PaymentRequest{
		CommerceOrder:   order.ID.String(),
		Subject:         fmt.Sprintf("Pedido Regalo Amor %s", order.ID),
		AmountCLP:       order.TotalCLP,
		Email:           input.CustomerEmail,
		URLConfirmation: s.baseURL + "/api/flow/confirmacion",
		URLReturn:       s.baseURL + "/pago/retorno",
	})
	if err != nil {
		s.logg.Error(ctx, "gateway payment creation failed, rolling back order", err)
		if deleteErr := s.orders.Delete(ctx, order.ID); deleteErr != nil {
			s.logg.Error(ctx, "removing order after gateway failure", deleteErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
	}

	s.metrics.OrdersCreated.Inc()
	s.logg.Info(ctx, "order submitted, awaiting payment")

	return &SubmitResult{
		OrderID:    order.ID.String(),
		PaymentURL: payment.PaymentURL(),
		Token:      payment.Token,
	}, nil
}

// validateDelivery checks the chosen window and commune against the shipping
// configuration. Either list left unconfigured accepts any value.
func (s *service) validateDelivery(ctx context.Context, input SubmitInput) error {
	cfg, err := s.delivery.Get(ctx)
	if err != nil {
		return err
	}

	if len(cfg.TimeWindows) > 0 && !containsFold(cfg.TimeWindows, input.DeliveryWindow) {
		return pkgerrors.New(pkgerrors.CodeValidation, "horario de envío no disponible").
			WithDetails(map[string]any{"horarios": cfg.TimeWindows})
	}
	if len(cfg.Communes) > 0 && !containsFold(cfg.Communes, input.Commune) {
		return pkgerrors.New(pkgerrors.CodeValidation, "comuna sin cobertura de envío").
			WithDetails(map[string]any{"comunas": cfg.Communes})
	}
	return nil
}

func containsFold(haystack []string, needle string) bool {
	needle = strings.TrimSpace(needle)
	for _, candidate := range haystack {
		if strings.EqualFold(strings.TrimSpace(candidate), needle) {
			return true
		}
	}
	return false
}
