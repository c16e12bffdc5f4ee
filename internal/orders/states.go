// Package orders owns the order lifecycle: persistence, the status machine,
// and the admin transitions that drive it.
package orders

import (
	"github.com/regaloamor/storefront-backend/pkg/enums"
)

// transitions is the full status machine. Payment outcomes move orders out of
// pendiente_pago; everything after pagado is fulfillment driven by the admin.
// cancelado is reachable from any non-terminal status.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingPayment: {
		enums.OrderStatusPaid,
		enums.OrderStatusRejected,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusPaid: {
		enums.OrderStatusInProgress,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusInProgress: {
		enums.OrderStatusReady,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusReady: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusDelivered: nil,
	enums.OrderStatusRejected:  nil,
	enums.OrderStatusCancelled: nil,
}

// CanTransition reports whether from may move to target.
func CanTransition(from, target enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from enums.OrderStatus) []enums.OrderStatus {
	return append([]enums.OrderStatus(nil), transitions[from]...)
}
