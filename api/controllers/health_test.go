package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestHealthLive(t *testing.T) {
	ctrl, err := NewHealthController(&stubPinger{}, &stubPinger{}, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctrl.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthReady(t *testing.T) {
	ctrl, err := NewHealthController(&stubPinger{}, &stubPinger{}, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctrl.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestHealthReadyDatabaseDown(t *testing.T) {
	ctrl, err := NewHealthController(&stubPinger{err: errors.New("connection refused")}, &stubPinger{}, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctrl.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthReadyRedisDown(t *testing.T) {
	ctrl, err := NewHealthController(&stubPinger{}, &stubPinger{err: errors.New("connection refused")}, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctrl.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
