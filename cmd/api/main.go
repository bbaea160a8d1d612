package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/lemarcheci/storefront-backend/api"
	"github.com/lemarcheci/storefront-backend/api/controllers"
	"github.com/lemarcheci/storefront-backend/api/routes"
	"github.com/lemarcheci/storefront-backend/internal/availability"
	"github.com/lemarcheci/storefront-backend/internal/cart"
	"github.com/lemarcheci/storefront-backend/internal/checkout"
	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/internal/products"
	"github.com/lemarcheci/storefront-backend/internal/stores"
	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/db"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/metrics"
	"github.com/lemarcheci/storefront-backend/pkg/migrate"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api exited with error", err)
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	database, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, database); err != nil {
		return err
	}

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, cache.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	availabilityMetrics := metrics.NewAvailabilityMetrics(registry)

	gate, err := conflict.NewGate(conflict.ContextResolver, logg)
	if err != nil {
		return err
	}

	productsRepo, err := products.NewRepository(database.DB())
	if err != nil {
		return err
	}
	productsSvc, err := products.NewService(productsRepo)
	if err != nil {
		return err
	}

	availabilityRepo, err := availability.NewRepository(database.DB())
	if err != nil {
		return err
	}
	availabilitySvc, err := availability.NewService(availabilityRepo, cache, cfg.Availability, logg, availabilityMetrics)
	if err != nil {
		return err
	}

	cartRepo, err := cart.NewRepository(database.DB())
	if err != nil {
		return err
	}
	cartSvc, err := cart.NewService(cartRepo, database, productsSvc, availabilitySvc, gate, logg)
	if err != nil {
		return err
	}

	storesRepo, err := stores.NewRepository(database.DB())
	if err != nil {
		return err
	}
	storesSvc, err := stores.NewService(storesRepo, cache, gate, cartSvc, cfg.Session, logg)
	if err != nil {
		return err
	}

	checkoutSvc, err := checkout.NewService(cartSvc, cfg.Checkout)
	if err != nil {
		return err
	}

	healthCtrl, err := controllers.NewHealthController(database, cache, logg)
	if err != nil {
		return err
	}
	productsCtrl, err := controllers.NewProductsController(productsSvc, availabilitySvc, logg)
	if err != nil {
		return err
	}
	storesCtrl, err := controllers.NewStoresController(storesSvc, logg)
	if err != nil {
		return err
	}
	cartCtrl, err := controllers.NewCartController(cartSvc, checkoutSvc, logg)
	if err != nil {
		return err
	}
	checkoutCtrl, err := controllers.NewCheckoutController(checkoutSvc, logg)
	if err != nil {
		return err
	}

	router := routes.New(cfg, routes.Controllers{
		Health:   healthCtrl,
		Products: productsCtrl,
		Stores:   storesCtrl,
		Cart:     cartCtrl,
		Checkout: checkoutCtrl,
	}, cache, registry, logg)

	server := api.NewServer(cfg.App, router, logg)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logg.Info(shutdownCtx, "shutting down")
	return multierr.Append(server.Shutdown(shutdownCtx), <-serverErr)
}
