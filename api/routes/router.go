package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/regaloamor/storefront-backend/api/controllers"
	"github.com/regaloamor/storefront-backend/api/middleware"
	authsvc "github.com/regaloamor/storefront-backend/internal/auth"
	cartsvc "github.com/regaloamor/storefront-backend/internal/cart"
	checkoutsvc "github.com/regaloamor/storefront-backend/internal/checkout"
	ordersvc "github.com/regaloamor/storefront-backend/internal/orders"
	paymentsvc "github.com/regaloamor/storefront-backend/internal/payments"
	productsvc "github.com/regaloamor/storefront-backend/internal/products"
	shippingsvc "github.com/regaloamor/storefront-backend/internal/shipping"
	taxsvc "github.com/regaloamor/storefront-backend/internal/taxes"
	"github.com/regaloamor/storefront-backend/pkg/config"
	"github.com/regaloamor/storefront-backend/pkg/db"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/metrics"
	"github.com/regaloamor/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	reg *metrics.Registry,
	authService authsvc.Service,
	productService productsvc.Service,
	shippingService shippingsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	paymentService paymentsvc.Service,
	taxService taxsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, reg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"admin-login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if reg != nil {
		r.Method(http.MethodGet, "/metrics", reg.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/productos", controllers.ListCatalog(productService, logg))
		r.Get("/config-envios", controllers.GetShippingConfig(shippingService, logg))
		r.Post("/carrito/cotizar", controllers.CartQuote(cartService, logg))
		r.Post("/pedido", controllers.SubmitOrder(checkoutService, logg))
		r.Get("/pedido/{orderId}", controllers.OrderLookup(orderService, logg))

		r.Route("/flow", func(r chi.Router) {
			r.Post("/confirmacion", controllers.FlowConfirmation(paymentService, logg))
			r.Get("/retorno", controllers.FlowReturn(logg))
			r.Post("/retorno", controllers.FlowReturn(logg))
		})

		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/admin/login", controllers.AdminLogin(authService, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/pedidos", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(orderService, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(orderService, logg))
				r.Put("/{orderId}/estado", controllers.AdminTransitionOrder(orderService, logg))
			})

			r.Route("/productos", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(productService, logg))
				r.Post("/", controllers.AdminCreateProduct(productService, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/{productId}", controllers.AdminDeactivateProduct(productService, logg))
			})

			r.Post("/config-envios", controllers.AdminUpdateShippingConfig(shippingService, logg))

			r.Route("/sii", func(r chi.Router) {
				r.Get("/", controllers.AdminSIISummary(taxService, logg))
				r.Post("/marcar-pago", controllers.AdminSIIMarkPaid(taxService, logg))
			})
		})
	})

	return r
}
