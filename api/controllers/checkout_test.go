package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/regaloamor/storefront-backend/internal/checkout"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	submit func(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error)
}

func (s *stubCheckoutService) Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
	return s.submit(ctx, input)
}

const submitBody = `{
  "carrito": [{"id": "7f9c24e8-3b0a-4b5e-9d11-0f2a6c1d8e55", "nombre": "Taza personalizada", "cantidad": 3, "precio": 7200}],
  "total": 24600,
  "nombre": "Maria Perez",
  "rut": "12.345.678-5",
  "email": "maria@example.com",
  "direccion": "Av. Siempre Viva 742",
  "comuna": "Providencia",
  "telefonoWsp": "+56911112222",
  "telefonoLlamada": "",
  "telefonoEsMismo": true,
  "fechaEnvio": "2026-09-05",
  "horarioEnvio": "10:00-13:00",
  "mensajePersonalizacion": "Feliz cumpleaños",
  "tipoDiseno": "foto",
  "imagenBase64": "data:image/png;base64,iVBORw0KGgo="
}`

func TestSubmitOrderAcceptsStorefrontPayload(t *testing.T) {
	svc := &stubCheckoutService{
		submit: func(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
			require.Len(t, input.Cart, 1)
			require.Equal(t, "7f9c24e8-3b0a-4b5e-9d11-0f2a6c1d8e55", input.Cart[0].ProductID.String())
			require.Equal(t, 3, input.Cart[0].Qty)
			require.True(t, input.PhoneSame)
			require.NotNil(t, input.ImageBase64)
			require.Equal(t, "10:00-13:00", input.DeliveryWindow)
			return &checkoutsvc.SubmitResult{OrderID: "ord-1", PaymentURL: "https://flow.cl/pay?token=tok"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/pedido", strings.NewReader(submitBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	SubmitOrder(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":true`)
	require.Contains(t, rec.Body.String(), `"urlPago":"https://flow.cl/pay?token=tok"`)
	require.Contains(t, rec.Body.String(), `"pedidoId":"ord-1"`)
}

func TestSubmitOrderErrorUsesFlatShape(t *testing.T) {
	svc := &stubCheckoutService{
		submit: func(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "comuna sin cobertura de envío")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/pedido", strings.NewReader(submitBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	SubmitOrder(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":false`)
	require.Contains(t, rec.Body.String(), `"message":"comuna sin cobertura de envío"`)
}
