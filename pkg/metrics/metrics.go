package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the API's Prometheus collectors.
type Registry struct {
	registry *prometheus.Registry

	OrdersCreated     prometheus.Counter
	PaymentsConfirmed prometheus.Counter
	PaymentsRejected  prometheus.Counter
	EmailsSent        prometheus.Counter
	EmailsFailed      prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New builds the registry with all collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders created in pendiente_pago.",
		}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_payments_confirmed_total",
			Help: "Gateway confirmations applying a pagado transition.",
		}),
		PaymentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_payments_rejected_total",
			Help: "Gateway confirmations applying a rechazado transition.",
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_status_emails_sent_total",
			Help: "Status notification emails dispatched.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_status_emails_failed_total",
			Help: "Status notification emails that failed to send.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		r.OrdersCreated,
		r.PaymentsConfirmed,
		r.PaymentsRejected,
		r.EmailsSent,
		r.EmailsFailed,
		r.RequestDuration,
	)
	return r
}

// Handler exposes the registry over HTTP for scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
