package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID accepts an inbound X-Request-Id or mints one, echoes it on the
// response, and binds it to the request logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, requestID)
			}

			w.Header().Set(requestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
