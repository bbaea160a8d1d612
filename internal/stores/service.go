package stores

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
	"github.com/lemarcheci/storefront-backend/pkg/types"
)

type selectionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SelectionKey(sessionID string) string
}

type cartReader interface {
	ItemsBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	ClearStoreItems(ctx context.Context, sessionID string, store enums.StoreCode) error
}

// Service owns the per-session store selection state and the store catalog.
type Service interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	GetSelection(ctx context.Context, sessionID string) (Selection, error)
	SelectStore(ctx context.Context, sessionID string, code enums.StoreCode) (SwitchResult, error)
	RecordLocation(ctx context.Context, sessionID string, coords types.LatLng) (Selection, error)
	RecordLocationError(ctx context.Context, sessionID string, code enums.LocationErrorCode) (Selection, error)
	DetectNearestStore(ctx context.Context, sessionID string, coords *types.LatLng) (SwitchResult, error)
}

type service struct {
	repo  Repository
	state selectionStore
	gate  *conflict.Gate
	carts cartReader
	cfg   config.SessionConfig
	logg  *logger.Logger
}

// NewService wires the selection service.
func NewService(repo Repository, state selectionStore, gate *conflict.Gate, carts cartReader, cfg config.SessionConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if state == nil {
		return nil, errors.New("selection store is required")
	}
	if gate == nil {
		return nil, errors.New("conflict gate is required")
	}
	if carts == nil {
		return nil, errors.New("cart reader is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, state: state, gate: gate, carts: carts, cfg: cfg, logg: logg}, nil
}

func (s *service) ListStores(ctx context.Context) ([]models.Store, error) {
	rows, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stores")
	}
	return rows, nil
}

// GetSelection returns the persisted selection or the unset default.
func (s *service) GetSelection(ctx context.Context, sessionID string) (Selection, error) {
	if sessionID == "" {
		return Selection{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.load(ctx, sessionID)
}

// SelectStore applies a manual store choice. Switching to the already
// selected store is a no-op beyond stamping the manual source. A switch that
// would strand cart items from another store goes through the conflict gate.
func (s *service) SelectStore(ctx context.Context, sessionID string, code enums.StoreCode) (SwitchResult, error) {
	if !code.IsValid() {
		return SwitchResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown store code")
	}

	sel, err := s.load(ctx, sessionID)
	if err != nil {
		return SwitchResult{}, err
	}

	return s.switchStore(ctx, sel, code, SourceManual)
}

// RecordLocation stores the shopper's coordinates and clears any previous
// geolocation error.
func (s *service) RecordLocation(ctx context.Context, sessionID string, coords types.LatLng) (Selection, error) {
	if err := coords.Validate(); err != nil {
		return Selection{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coordinates")
	}

	sel, err := s.load(ctx, sessionID)
	if err != nil {
		return Selection{}, err
	}

	now := time.Now().UTC()
	sel.UserLocation = &coords
	sel.LocationError = nil
	sel.LastLocationAt = &now
	if err := s.save(ctx, &sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// RecordLocationError notes a geolocation failure. The failure is never fatal
// to the selection flow; shoppers keep browsing with the current store.
func (s *service) RecordLocationError(ctx context.Context, sessionID string, code enums.LocationErrorCode) (Selection, error) {
	if !code.IsValid() {
		return Selection{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown location error code")
	}

	sel, err := s.load(ctx, sessionID)
	if err != nil {
		return Selection{}, err
	}

	sel.LocationError = &code
	if err := s.save(ctx, &sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// DetectNearestStore ranks stores by distance from the provided or previously
// recorded coordinates. It always records the nearest store; it only changes
// the selection when no manual choice exists, and then through the same
// conflict gate a manual switch uses.
func (s *service) DetectNearestStore(ctx context.Context, sessionID string, coords *types.LatLng) (SwitchResult, error) {
	sel, err := s.load(ctx, sessionID)
	if err != nil {
		return SwitchResult{}, err
	}

	point := coords
	if point == nil {
		point = sel.UserLocation
	}
	if point == nil {
		return SwitchResult{}, pkgerrors.New(pkgerrors.CodeValidation, "no coordinates recorded for session")
	}
	if err := point.Validate(); err != nil {
		return SwitchResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coordinates")
	}

	rows, err := s.repo.ListStores(ctx)
	if err != nil {
		return SwitchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stores")
	}
	if len(rows) == 0 {
		return SwitchResult{}, pkgerrors.New(pkgerrors.CodeInternal, "store catalog is empty")
	}

	nearest := nearestStore(rows, *point)

	now := time.Now().UTC()
	sel.NearestStore = &nearest
	if coords != nil {
		sel.UserLocation = coords
		sel.LocationError = nil
		sel.LastLocationAt = &now
	}

	if sel.HasManualSelection() {
		if err := s.save(ctx, &sel); err != nil {
			return SwitchResult{}, err
		}
		return SwitchResult{Outcome: conflict.OutcomeNoConflict, Selection: sel}, nil
	}

	return s.switchStore(ctx, sel, nearest, SourceDetected)
}

// nearestStore picks the closest store; rows arrive in canonical order so a
// strict comparison resolves equidistant ties to the first-defined store.
func nearestStore(rows []models.Store, point types.LatLng) enums.StoreCode {
	best := rows[0].Code
	bestDistance := distanceMeters(point, types.LatLng{Lat: rows[0].Lat, Lng: rows[0].Lng})
	for _, row := range rows[1:] {
		d := distanceMeters(point, types.LatLng{Lat: row.Lat, Lng: row.Lng})
		if d < bestDistance {
			best = row.Code
			bestDistance = d
		}
	}
	return best
}

func (s *service) switchStore(ctx context.Context, sel Selection, code enums.StoreCode, source Source) (SwitchResult, error) {
	if sel.StoreCode != nil && *sel.StoreCode == code {
		sel.Source = source
		if err := s.save(ctx, &sel); err != nil {
			return SwitchResult{}, err
		}
		return SwitchResult{Outcome: conflict.OutcomeNoConflict, Selection: sel}, nil
	}

	items, err := s.carts.ItemsBySession(ctx, sel.SessionID)
	if err != nil {
		return SwitchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart items")
	}

	conflicting := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.StoreCode != code {
			conflicting = append(conflicting, item)
		}
	}

	current := code
	if sel.StoreCode != nil {
		current = *sel.StoreCode
	} else if len(conflicting) > 0 {
		current = conflicting[0].StoreCode
	}

	outcome, err := s.gate.Request(ctx, current, code, conflicting)
	if err != nil {
		return SwitchResult{}, err
	}

	switch outcome {
	case conflict.OutcomeDeclined:
		// The store pin stays put, but detection results already stamped on
		// the selection (nearest store, location) must still be persisted.
		if err := s.save(ctx, &sel); err != nil {
			return SwitchResult{}, err
		}
		return SwitchResult{Outcome: outcome, Selection: sel}, nil
	case conflict.OutcomeConfirmed:
		cleared := map[enums.StoreCode]bool{}
		for _, item := range conflicting {
			if cleared[item.StoreCode] {
				continue
			}
			cleared[item.StoreCode] = true
			if err := s.carts.ClearStoreItems(ctx, sel.SessionID, item.StoreCode); err != nil {
				return SwitchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart items")
			}
		}
	}

	sel.StoreCode = &code
	sel.Source = source
	if err := s.save(ctx, &sel); err != nil {
		return SwitchResult{}, err
	}
	return SwitchResult{Outcome: outcome, Selection: sel}, nil
}

func (s *service) load(ctx context.Context, sessionID string) (Selection, error) {
	raw, err := s.state.Get(ctx, s.state.SelectionKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return Selection{SessionID: sessionID}, nil
		}
		return Selection{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading selection state")
	}

	var sel Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		s.logg.Warn(ctx, "discarding malformed selection state")
		return Selection{SessionID: sessionID}, nil
	}
	sel.SessionID = sessionID
	return sel, nil
}

func (s *service) save(ctx context.Context, sel *Selection) error {
	sel.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(sel)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding selection state")
	}
	if err := s.state.Set(ctx, s.state.SelectionKey(sel.SessionID), string(payload), s.cfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting selection state")
	}
	return nil
}
