package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/internal/stores"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/types"
)

type stubStores struct {
	selection     stores.Selection
	switchResult  stores.SwitchResult
	lastConfirmed bool
	lastCoords    *types.LatLng
}

func (s *stubStores) ListStores(ctx context.Context) ([]models.Store, error) {
	return []models.Store{
		{Code: enums.StoreCocody, Name: "Lemarche Cocody", IsActive: true},
		{Code: enums.StoreKoumassi, Name: "Lemarche Koumassi", IsActive: true},
	}, nil
}

func (s *stubStores) GetSelection(ctx context.Context, sessionID string) (stores.Selection, error) {
	return s.selection, nil
}

func (s *stubStores) SelectStore(ctx context.Context, sessionID string, code enums.StoreCode) (stores.SwitchResult, error) {
	s.lastConfirmed = conflict.ConfirmationFromContext(ctx)
	return s.switchResult, nil
}

func (s *stubStores) RecordLocation(ctx context.Context, sessionID string, coords types.LatLng) (stores.Selection, error) {
	s.lastCoords = &coords
	return s.selection, nil
}

func (s *stubStores) RecordLocationError(ctx context.Context, sessionID string, code enums.LocationErrorCode) (stores.Selection, error) {
	errCode := code
	sel := s.selection
	sel.LocationError = &errCode
	return sel, nil
}

func (s *stubStores) DetectNearestStore(ctx context.Context, sessionID string, coords *types.LatLng) (stores.SwitchResult, error) {
	s.lastConfirmed = conflict.ConfirmationFromContext(ctx)
	s.lastCoords = coords
	return s.switchResult, nil
}

func newStoresController(t *testing.T, stub *stubStores) *StoresController {
	t.Helper()
	ctrl, err := NewStoresController(stub, testLogger())
	require.NoError(t, err)
	return ctrl
}

func TestStoresList(t *testing.T) {
	ctrl := newStoresController(t, &stubStores{})

	rec := httptest.NewRecorder()
	ctrl.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "COCODY")
	assert.Contains(t, rec.Body.String(), "KOUMASSI")
}

func TestPutSelectionForwardsConfirmation(t *testing.T) {
	code := enums.StoreKoumassi
	stub := &stubStores{switchResult: stores.SwitchResult{
		Outcome:   conflict.OutcomeConfirmed,
		Selection: stores.Selection{StoreCode: &code, Source: stores.SourceManual},
	}}
	ctrl := newStoresController(t, stub)

	rec := httptest.NewRecorder()
	ctrl.PutSelection(rec, sessionRequest(http.MethodPut, "/api/v1/stores/selection", `{"store":"KOUMASSI","confirm":true}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.lastConfirmed)
	assert.Contains(t, rec.Body.String(), `"outcome":"confirmed"`)
}

func TestPutSelectionUnknownStore(t *testing.T) {
	ctrl := newStoresController(t, &stubStores{})

	rec := httptest.NewRecorder()
	ctrl.PutSelection(rec, sessionRequest(http.MethodPut, "/api/v1/stores/selection", `{"store":"PLATEAU"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordLocation(t *testing.T) {
	stub := &stubStores{}
	ctrl := newStoresController(t, stub)

	rec := httptest.NewRecorder()
	ctrl.RecordLocation(rec, sessionRequest(http.MethodPost, "/api/v1/stores/selection/location", `{"lat":5.3599,"lng":-3.9810}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.lastCoords)
	assert.InDelta(t, 5.3599, stub.lastCoords.Lat, 0.0001)
}

func TestRecordLocationError(t *testing.T) {
	ctrl := newStoresController(t, &stubStores{})

	rec := httptest.NewRecorder()
	ctrl.RecordLocationError(rec, sessionRequest(http.MethodPost, "/api/v1/stores/selection/location-error", `{"code":"PERMISSION_DENIED"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PERMISSION_DENIED")
}

func TestRecordLocationErrorUnknownCode(t *testing.T) {
	ctrl := newStoresController(t, &stubStores{})

	rec := httptest.NewRecorder()
	ctrl.RecordLocationError(rec, sessionRequest(http.MethodPost, "/api/v1/stores/selection/location-error", `{"code":"LOST"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectWithCoordinates(t *testing.T) {
	code := enums.StoreKoumassi
	stub := &stubStores{switchResult: stores.SwitchResult{
		Outcome:   conflict.OutcomeNoConflict,
		Selection: stores.Selection{StoreCode: &code, Source: stores.SourceDetected},
	}}
	ctrl := newStoresController(t, stub)

	rec := httptest.NewRecorder()
	ctrl.Detect(rec, sessionRequest(http.MethodPost, "/api/v1/stores/selection/detect", `{"lat":5.3035,"lng":-3.9465}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.lastCoords)
	assert.Contains(t, rec.Body.String(), `"source":"detected"`)
}

func TestDetectWithoutBodyUsesStoredLocation(t *testing.T) {
	stub := &stubStores{switchResult: stores.SwitchResult{Outcome: conflict.OutcomeNoConflict}}
	ctrl := newStoresController(t, stub)

	rec := httptest.NewRecorder()
	ctrl.Detect(rec, sessionRequest(http.MethodPost, "/api/v1/stores/selection/detect", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, stub.lastCoords)
}

func TestDetectRejectsHalfCoordinates(t *testing.T) {
	ctrl := newStoresController(t, &stubStores{})

	rec := httptest.NewRecorder()
	ctrl.Detect(rec, sessionRequest(http.MethodPost, "/api/v1/stores/selection/detect", `{"lat":5.3035}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
