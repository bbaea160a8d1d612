package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lemarcheci/storefront-backend/pkg/config"
)

type stubLimiter struct {
	counts map[string]int64
	err    error
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{counts: map[string]int64{}}
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func limitedRequest(sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{}`))
	return req.WithContext(WithSessionID(req.Context(), sessionID))
}

func TestRateLimitBlocksAfterWindowLimit(t *testing.T) {
	limiter := newStubLimiter()
	handler := RateLimit(config.RateLimitConfig{Requests: 2, Window: time.Minute}, limiter, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, limitedRequest("sess-1"))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, limitedRequest("sess-1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimitIsScopedPerSession(t *testing.T) {
	limiter := newStubLimiter()
	handler := RateLimit(config.RateLimitConfig{Requests: 1, Window: time.Minute}, limiter, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	handler.ServeHTTP(httptest.NewRecorder(), limitedRequest("sess-1"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, limitedRequest("sess-2"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimitIgnoresReads(t *testing.T) {
	limiter := newStubLimiter()
	handler := RateLimit(config.RateLimitConfig{Requests: 1, Window: time.Minute}, limiter, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, limiter.counts)
}

func TestRateLimitDisabledByConfig(t *testing.T) {
	handler := RateLimit(config.RateLimitConfig{}, newStubLimiter(), testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, limitedRequest("sess-1"))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := newStubLimiter()
	handler := RateLimit(config.RateLimitConfig{Requests: 1, Window: time.Minute}, limiter, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	_, ok := limiter.counts["write:203.0.113.9"]
	assert.True(t, ok)
}
