package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/lemarcheci/storefront-backend/pkg/config"
)

// CORS applies the configured origin allowlist. Credentials are allowed so
// the session cookie survives cross-origin storefront calls.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
