package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/regaloamor/storefront-backend/api/routes"
	authsvc "github.com/regaloamor/storefront-backend/internal/auth"
	cartsvc "github.com/regaloamor/storefront-backend/internal/cart"
	checkoutsvc "github.com/regaloamor/storefront-backend/internal/checkout"
	"github.com/regaloamor/storefront-backend/internal/customers"
	"github.com/regaloamor/storefront-backend/internal/notifications"
	ordersvc "github.com/regaloamor/storefront-backend/internal/orders"
	paymentsvc "github.com/regaloamor/storefront-backend/internal/payments"
	productsvc "github.com/regaloamor/storefront-backend/internal/products"
	shippingsvc "github.com/regaloamor/storefront-backend/internal/shipping"
	taxsvc "github.com/regaloamor/storefront-backend/internal/taxes"
	"github.com/regaloamor/storefront-backend/pkg/config"
	"github.com/regaloamor/storefront-backend/pkg/db"
	"github.com/regaloamor/storefront-backend/pkg/flow"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/mailer"
	"github.com/regaloamor/storefront-backend/pkg/metrics"
	"github.com/regaloamor/storefront-backend/pkg/migrate"
	"github.com/regaloamor/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	flowClient, err := flow.NewClient(context.Background(), cfg.Flow, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create flow client", err)
		os.Exit(1)
	}

	var sender mailer.Sender
	if cfg.Mail.APIKey != "" {
		sender, err = mailer.NewHTTPSender(cfg.Mail)
		if err != nil {
			logg.Error(context.Background(), "failed to create mail sender", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "mail api key missing, status emails disabled")
		sender = mailer.NoopSender{}
	}

	reg := metrics.New()

	productRepo := productsvc.NewRepository(dbClient.DB())
	customerRepo := customers.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())
	shippingRepo := shippingsvc.NewRepository(dbClient.DB())
	taxRepo := taxsvc.NewRepository(dbClient.DB())

	productService, err := productsvc.NewService(productRepo, dbClient)
	requireService(logg, "products", err)

	shippingService, err := shippingsvc.NewService(shippingRepo, cfg.Shop.DefaultShippingCost)
	requireService(logg, "shipping", err)

	cartService, err := cartsvc.NewService(productRepo, shippingService)
	requireService(logg, "cart", err)

	notifier, err := notifications.NewService(sender, logg, reg)
	requireService(logg, "notifications", err)

	orderService, err := ordersvc.NewService(orderRepo, notifier, logg)
	requireService(logg, "orders", err)

	checkoutService, err := checkoutsvc.NewService(
		cartService, shippingService, customerRepo, orderRepo, dbClient, flowClient, logg, reg, cfg.App.BaseURL,
	)
	requireService(logg, "checkout", err)

	paymentService, err := paymentsvc.NewService(
		orderRepo, taxRepo, customerRepo, notifier, logg, reg, cfg.Shop.LoyaltyRate,
	)
	requireService(logg, "payments", err)

	taxService, err := taxsvc.NewService(taxRepo)
	requireService(logg, "taxes", err)

	authService, err := authsvc.NewService(cfg.Admin, cfg.JWT, logg)
	requireService(logg, "auth", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"flow_env": flowClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, reg,
			authService, productService, shippingService, cartService,
			checkoutService, orderService, paymentService, taxService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to create service", err)
	os.Exit(1)
}
