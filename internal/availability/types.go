package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// Availability is the read-model answer for one product at one branch.
type Availability struct {
	ProductID       uuid.UUID       `json:"product_id"`
	StoreCode       enums.StoreCode `json:"store_code"`
	IsAvailable     bool            `json:"is_available"`
	Quantity        int             `json:"quantity"`
	IsLowStock      bool            `json:"is_low_stock"`
	LastUpdated     time.Time       `json:"last_updated"`
	NextRestockDate *time.Time      `json:"next_restock_date,omitempty"`
	// Degraded marks answers produced by the unavailable fallback after a
	// dependency failure. Degraded answers are never cached.
	Degraded bool `json:"degraded,omitempty"`
}
