package stores

import (
	"time"

	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/types"
)

// Source records how the selected store was chosen.
type Source string

const (
	// SourceManual means the shopper picked the store explicitly.
	SourceManual Source = "manual"
	// SourceDetected means nearest-store detection picked it.
	SourceDetected Source = "detected"
)

// Selection is the per-session store selection state, persisted as JSON in
// redis under the session key.
type Selection struct {
	SessionID      string                   `json:"session_id"`
	StoreCode      *enums.StoreCode         `json:"store_code,omitempty"`
	Source         Source                   `json:"source,omitempty"`
	UserLocation   *types.LatLng            `json:"user_location,omitempty"`
	NearestStore   *enums.StoreCode         `json:"nearest_store,omitempty"`
	LocationError  *enums.LocationErrorCode `json:"location_error,omitempty"`
	LastLocationAt *time.Time               `json:"last_location_at,omitempty"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// HasManualSelection reports whether the shopper explicitly chose a store.
func (s Selection) HasManualSelection() bool {
	return s.StoreCode != nil && s.Source == SourceManual
}

// SwitchResult is the answer to a selection change request.
type SwitchResult struct {
	Outcome   conflict.Outcome `json:"outcome"`
	Selection Selection        `json:"selection"`
}
