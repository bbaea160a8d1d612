package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

type memoryIdempotencyStore struct {
	data map[string]string
}

func newMemoryStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: map[string]string{}}
}

func (m *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.ErrNotFound
}

func (m *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "lm:idempotency:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func idempotentRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(WithSessionID(req.Context(), "sess-1"))
}

func TestIdempotencyRequiresHeaderOnMatchedRoute(t *testing.T) {
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, idempotentRequest(`{"quantity":1}`, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Idempotency-Key")
}

func TestIdempotencyIgnoresUnmatchedRoutes(t *testing.T) {
	var calls int32
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.EqualValues(t, 1, calls)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	var calls int32
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"status":"added"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(`{"quantity":1}`, "key-1"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(`{"quantity":1}`, "key-1"))

	assert.EqualValues(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyKeyReuseWithDifferentBodyConflicts(t *testing.T) {
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{}}`))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest(`{"quantity":1}`, "key-1"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, idempotentRequest(`{"quantity":2}`, "key-1"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotencyKeysAreScopedPerSession(t *testing.T) {
	var calls int32
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{}}`))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest(`{"quantity":1}`, "key-1"))

	other := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"quantity":1}`))
	other.Header.Set("Idempotency-Key", "key-1")
	other = other.WithContext(WithSessionID(other.Context(), "sess-2"))
	handler.ServeHTTP(httptest.NewRecorder(), other)

	assert.EqualValues(t, 2, calls)
}
