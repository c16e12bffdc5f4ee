package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order. The string values are
// the ones persisted and exposed on the admin API (Spanish, matching the
// storefront copy).
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pendiente_pago"
	OrderStatusPaid           OrderStatus = "pagado"
	OrderStatusRejected       OrderStatus = "rechazado"
	OrderStatusInProgress     OrderStatus = "en_proceso"
	OrderStatusReady          OrderStatus = "terminado"
	OrderStatusShipped        OrderStatus = "enviado"
	OrderStatusDelivered      OrderStatus = "entregado"
	OrderStatusCancelled      OrderStatus = "cancelado"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaid,
	OrderStatusRejected,
	OrderStatusInProgress,
	OrderStatusReady,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
