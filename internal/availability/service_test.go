package availability

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

type stubRepo struct {
	items    map[uuid.UUID]models.InventoryItem
	err      error
	getCalls int
}

func (s *stubRepo) GetInventory(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (*models.InventoryItem, error) {
	s.getCalls++
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (s *stubRepo) ListInventory(ctx context.Context, productIDs []uuid.UUID, store enums.StoreCode) ([]models.InventoryItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.InventoryItem
	for _, id := range productIDs {
		if item, ok := s.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type stubCache struct {
	data map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string]string)}
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.data[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.data[key] = value.(string)
	return nil
}

func (s *stubCache) AvailabilityKey(productID, storeCode string) string {
	return "lm:availability:" + storeCode + ":" + productID
}

func newTestService(t *testing.T, repo Repository, cache cacheStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := config.AvailabilityConfig{CacheTTL: 30 * time.Second, DefaultLowStock: 5}
	svc, err := NewService(repo, cache, cfg, logg, nil)
	require.NoError(t, err)
	return svc
}

func TestCheckReturnsStockedProduct(t *testing.T) {
	productID := uuid.New()
	repo := &stubRepo{items: map[uuid.UUID]models.InventoryItem{
		productID: {ProductID: productID, StoreCode: enums.StoreCocody, AvailableQty: 12, ReservedQty: 2},
	}}
	svc := newTestService(t, repo, newStubCache())

	result, err := svc.Check(context.Background(), productID, enums.StoreCocody)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.Equal(t, 10, result.Quantity)
	assert.False(t, result.IsLowStock)
	assert.False(t, result.Degraded)
}

func TestCheckFlagsLowStockWithDefaultThreshold(t *testing.T) {
	productID := uuid.New()
	repo := &stubRepo{items: map[uuid.UUID]models.InventoryItem{
		productID: {ProductID: productID, StoreCode: enums.StoreCocody, AvailableQty: 4},
	}}
	svc := newTestService(t, repo, newStubCache())

	result, err := svc.Check(context.Background(), productID, enums.StoreCocody)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.True(t, result.IsLowStock)
}

func TestCheckHonorsPerItemThreshold(t *testing.T) {
	productID := uuid.New()
	threshold := 20
	repo := &stubRepo{items: map[uuid.UUID]models.InventoryItem{
		productID: {ProductID: productID, StoreCode: enums.StoreCocody, AvailableQty: 15, LowStockThreshold: &threshold},
	}}
	svc := newTestService(t, repo, newStubCache())

	result, err := svc.Check(context.Background(), productID, enums.StoreCocody)
	require.NoError(t, err)
	assert.True(t, result.IsLowStock)
}

func TestCheckMissingInventoryMeansNotStocked(t *testing.T) {
	repo := &stubRepo{items: map[uuid.UUID]models.InventoryItem{}}
	svc := newTestService(t, repo, newStubCache())

	result, err := svc.Check(context.Background(), uuid.New(), enums.StoreKoumassi)
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.Equal(t, 0, result.Quantity)
	assert.False(t, result.Degraded)
}

func TestCheckDegradesOnRepositoryFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("connection refused")}
	cache := newStubCache()
	svc := newTestService(t, repo, cache)

	result, err := svc.Check(context.Background(), uuid.New(), enums.StoreCocody)
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.True(t, result.Degraded)
	assert.Empty(t, cache.data, "degraded answers must not be cached")
}

func TestCheckServesSecondLookupFromCache(t *testing.T) {
	productID := uuid.New()
	repo := &stubRepo{items: map[uuid.UUID]models.InventoryItem{
		productID: {ProductID: productID, StoreCode: enums.StoreCocody, AvailableQty: 7},
	}}
	svc := newTestService(t, repo, newStubCache())

	_, err := svc.Check(context.Background(), productID, enums.StoreCocody)
	require.NoError(t, err)
	result, err := svc.Check(context.Background(), productID, enums.StoreCocody)
	require.NoError(t, err)

	assert.Equal(t, 7, result.Quantity)
	assert.Equal(t, 1, repo.getCalls, "second lookup should hit the cache")
}

func TestCheckBatchMixesStockedAndMissing(t *testing.T) {
	stocked := uuid.New()
	missing := uuid.New()
	repo := &stubRepo{items: map[uuid.UUID]models.InventoryItem{
		stocked: {ProductID: stocked, StoreCode: enums.StoreKoumassi, AvailableQty: 3},
	}}
	svc := newTestService(t, repo, newStubCache())

	results, err := svc.CheckBatch(context.Background(), []uuid.UUID{stocked, missing}, enums.StoreKoumassi)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[stocked].IsAvailable)
	assert.Equal(t, 3, results[stocked].Quantity)
	assert.False(t, results[missing].IsAvailable)
}

func TestCheckBatchDegradesAllOnFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("timeout")}
	svc := newTestService(t, repo, newStubCache())

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	results, err := svc.CheckBatch(context.Background(), ids, enums.StoreCocody)
	require.NoError(t, err)
	for _, id := range ids {
		assert.True(t, results[id].Degraded)
		assert.False(t, results[id].IsAvailable)
	}
}
