package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StorefrontAck is the flat acknowledgement shape the public storefront
// consumes after an order submission.
type StorefrontAck struct {
	OK         bool   `json:"ok"`
	PaymentURL string `json:"urlPago,omitempty"`
	OrderID    string `json:"pedidoId,omitempty"`
}

type StorefrontError struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
