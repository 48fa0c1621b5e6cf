package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/tbostore/storefront-backend/api/routes"
	"github.com/tbostore/storefront-backend/internal/cart"
	checkoutsvc "github.com/tbostore/storefront-backend/internal/checkout"
	coupons "github.com/tbostore/storefront-backend/internal/coupons"
	"github.com/tbostore/storefront-backend/internal/currency"
	"github.com/tbostore/storefront-backend/internal/orders"
	product "github.com/tbostore/storefront-backend/internal/products"
	"github.com/tbostore/storefront-backend/internal/settings"
	stripewebhook "github.com/tbostore/storefront-backend/internal/webhooks/stripe"
	"github.com/tbostore/storefront-backend/pkg/config"
	"github.com/tbostore/storefront-backend/pkg/db"
	"github.com/tbostore/storefront-backend/pkg/logger"
	"github.com/tbostore/storefront-backend/pkg/metrics"
	"github.com/tbostore/storefront-backend/pkg/migrate"
	"github.com/tbostore/storefront-backend/pkg/redis"
	"github.com/tbostore/storefront-backend/pkg/stripe"
)

const (
	cartPruneInterval = 15 * time.Minute
	cartMaxIdle       = 24 * time.Hour

	webhookGuardTTL      = 7 * 24 * time.Hour
	webhookGuardProvider = "stripe"

	shutdownTimeout = 15 * time.Second
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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var stripeClient *stripe.Client
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap stripe", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "stripe api key not configured, hosted checkout disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	converter, err := currency.NewConverter(cfg.Currency)
	if err != nil {
		logg.Error(context.Background(), "failed to build currency converter", err)
		os.Exit(1)
	}

	currencyService, err := currency.NewService(converter, redisClient, logg)
	requireService(logg, "currency", err)

	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	requireService(logg, "product", err)

	couponService, err := coupons.NewService(coupons.NewRepository(dbClient.DB()))
	requireService(logg, "coupon", err)

	ordersRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(ordersRepo, logg)
	requireService(logg, "order", err)

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), cfg.WhatsApp)
	requireService(logg, "settings", err)

	cartManager := cart.NewManager()

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:       cartManager,
		Coupons:     couponService,
		Orders:      ordersRepo,
		OrderReader: orderService,
		Settings:    settingsService,
		Stripe:      checkoutsvc.NewStripeClient(stripeClient),
		Config:      cfg.Checkout,
		Metrics:     checkoutMetrics,
		Logger:      logg,
	})
	requireService(logg, "checkout", err)

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Orders:    ordersRepo,
		LineItems: stripewebhook.NewLineItemLister(),
		Logger:    logg,
	})
	requireService(logg, "stripe webhook", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookGuardTTL, webhookGuardProvider)
	requireService(logg, "webhook guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Carts:           cartManager,
			Products:        productService,
			Coupons:         couponService,
			Orders:          orderService,
			Settings:        settingsService,
			Currency:        currencyService,
			Checkout:        checkoutService,
			Stripe:          stripeClient,
			WebhookService:  webhookService,
			WebhookGuard:    webhookGuard,
			MetricsGatherer: registry,
		}),
	}

	pruneDone := make(chan struct{})
	go pruneCarts(ctx, logg, cartManager, pruneDone)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	close(pruneDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "shutdown complete")
}

// pruneCarts reclaims carts abandoned by sessions that never came back.
func pruneCarts(ctx context.Context, logg *logger.Logger, carts *cart.Manager, done <-chan struct{}) {
	ticker := time.NewTicker(cartPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if pruned := carts.PruneIdle(cartMaxIdle); pruned > 0 {
				logg.Info(logg.WithField(ctx, "pruned", pruned), "idle carts reclaimed")
			}
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
