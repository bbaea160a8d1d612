package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// CartRecord is the session-scoped cart. StoreCode is nil until the first
// item pins the cart to a branch.
type CartRecord struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SessionID string           `gorm:"column:session_id;not null;uniqueIndex"`
	StoreCode *enums.StoreCode `gorm:"column:store_code"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
