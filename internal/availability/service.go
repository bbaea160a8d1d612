package availability

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/db"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/metrics"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	AvailabilityKey(productID, storeCode string) string
}

// Service answers stock questions for the storefront. Lookups read through a
// short-lived cache so product grids do not hammer the inventory table.
type Service interface {
	Check(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (Availability, error)
	CheckBatch(ctx context.Context, productIDs []uuid.UUID, store enums.StoreCode) (map[uuid.UUID]Availability, error)
}

type service struct {
	repo    Repository
	cache   cacheStore
	cfg     config.AvailabilityConfig
	logg    *logger.Logger
	metrics *metrics.AvailabilityMetrics
}

// NewService wires the availability reader. The metrics collector may be nil.
func NewService(repo Repository, cache cacheStore, cfg config.AvailabilityConfig, logg *logger.Logger, m *metrics.AvailabilityMetrics) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if cache == nil {
		return nil, errors.New("cache is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, cache: cache, cfg: cfg, logg: logg, metrics: m}, nil
}

// Check resolves availability for one product at one branch. A missing
// inventory row means the branch does not stock the product. Cache or
// database failures degrade to an unavailable answer instead of erroring so
// a flaky dependency cannot take the storefront down.
func (s *service) Check(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (Availability, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLookup(store.String(), time.Since(start))
	}()

	if cached, ok := s.fromCache(ctx, productID, store); ok {
		s.metrics.IncCacheHit(store.String())
		return cached, nil
	}
	s.metrics.IncCacheMiss(store.String())

	item, err := s.repo.GetInventory(ctx, productID, store)
	if err != nil {
		if db.IsNotFound(err) {
			result := s.notStocked(productID, store)
			s.toCache(ctx, result)
			return result, nil
		}
		s.logg.Error(ctx, "inventory lookup failed, serving unavailable fallback", err)
		s.metrics.IncFallback(store.String())
		return s.fallback(productID, store), nil
	}

	result := s.fromInventory(*item, store)
	s.toCache(ctx, result)
	return result, nil
}

// CheckBatch resolves availability for many products at once. The database is
// queried a single time for every cache miss.
func (s *service) CheckBatch(ctx context.Context, productIDs []uuid.UUID, store enums.StoreCode) (map[uuid.UUID]Availability, error) {
	results := make(map[uuid.UUID]Availability, len(productIDs))
	if len(productIDs) == 0 {
		return results, nil
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveLookup(store.String(), time.Since(start))
	}()

	missing := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		if cached, ok := s.fromCache(ctx, id, store); ok {
			s.metrics.IncCacheHit(store.String())
			results[id] = cached
			continue
		}
		s.metrics.IncCacheMiss(store.String())
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return results, nil
	}

	items, err := s.repo.ListInventory(ctx, missing, store)
	if err != nil {
		s.logg.Error(ctx, "inventory batch lookup failed, serving unavailable fallback", err)
		s.metrics.IncFallback(store.String())
		for _, id := range missing {
			results[id] = s.fallback(id, store)
		}
		return results, nil
	}

	byProduct := make(map[uuid.UUID]Availability, len(items))
	for _, item := range items {
		byProduct[item.ProductID] = s.fromInventory(item, store)
	}
	for _, id := range missing {
		result, ok := byProduct[id]
		if !ok {
			result = s.notStocked(id, store)
		}
		s.toCache(ctx, result)
		results[id] = result
	}
	return results, nil
}

func (s *service) fromInventory(item models.InventoryItem, store enums.StoreCode) Availability {
	qty := item.SellableQty()
	threshold := s.cfg.DefaultLowStock
	if item.LowStockThreshold != nil {
		threshold = *item.LowStockThreshold
	}
	return Availability{
		ProductID:       item.ProductID,
		StoreCode:       store,
		IsAvailable:     qty > 0,
		Quantity:        qty,
		IsLowStock:      qty > 0 && qty <= threshold,
		LastUpdated:     item.UpdatedAt,
		NextRestockDate: item.NextRestockAt,
	}
}

func (s *service) notStocked(productID uuid.UUID, store enums.StoreCode) Availability {
	return Availability{ProductID: productID, StoreCode: store}
}

func (s *service) fallback(productID uuid.UUID, store enums.StoreCode) Availability {
	return Availability{ProductID: productID, StoreCode: store, Degraded: true}
}

func (s *service) fromCache(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (Availability, bool) {
	raw, err := s.cache.Get(ctx, s.cache.AvailabilityKey(productID.String(), store.String()))
	if err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			s.logg.Warn(ctx, "availability cache read failed")
		}
		return Availability{}, false
	}
	var result Availability
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Availability{}, false
	}
	return result, true
}

func (s *service) toCache(ctx context.Context, result Availability) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	key := s.cache.AvailabilityKey(result.ProductID.String(), result.StoreCode.String())
	if err := s.cache.Set(ctx, key, string(payload), s.cfg.CacheTTL); err != nil {
		s.logg.Warn(ctx, "availability cache write failed")
	}
}
