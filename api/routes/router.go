package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lemarcheci/storefront-backend/api/controllers"
	"github.com/lemarcheci/storefront-backend/api/middleware"
	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

// Controllers carries every handler group the router mounts.
type Controllers struct {
	Health   *controllers.HealthController
	Products *controllers.ProductsController
	Stores   *controllers.StoresController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
}

// New assembles the HTTP surface: health and metrics outside the session
// scope, the storefront API underneath it. The redis client backs both the
// idempotency and rate-limit middleware.
func New(cfg *config.Config, ctrl Controllers, cache *redis.Client, registry *prometheus.Registry, logg *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/health/live", ctrl.Health.Live)
	r.Get("/health/ready", ctrl.Health.Ready)

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Session(cfg.Session, cfg.App.IsProd(), logg))
		api.Use(middleware.RateLimit(cfg.RateLimit, cache, logg))
		api.Use(middleware.Idempotency(cache, logg))

		api.Route("/stores", func(rt chi.Router) {
			rt.Get("/", ctrl.Stores.List)
			rt.Get("/selection", ctrl.Stores.GetSelection)
			rt.Put("/selection", ctrl.Stores.PutSelection)
			rt.Post("/selection/location", ctrl.Stores.RecordLocation)
			rt.Post("/selection/location-error", ctrl.Stores.RecordLocationError)
			rt.Post("/selection/detect", ctrl.Stores.Detect)
		})

		api.Route("/products", func(rt chi.Router) {
			rt.Get("/", ctrl.Products.List)
			rt.Get("/{productId}", ctrl.Products.Get)
			rt.Get("/{productId}/availability", ctrl.Products.Availability)
		})

		api.Get("/categories", ctrl.Products.Categories)

		api.Route("/cart", func(rt chi.Router) {
			rt.Get("/", ctrl.Cart.Get)
			rt.Post("/items", ctrl.Cart.AddItem)
			rt.Patch("/items/{productId}", ctrl.Cart.UpdateQuantity)
			rt.Delete("/items/{productId}", ctrl.Cart.RemoveItem)
		})

		api.Post("/checkout/quote", ctrl.Checkout.Quote)
	})

	return r
}
