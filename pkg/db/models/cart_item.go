package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// CartItem persists a product snapshot tied to a CartRecord. Price fields are
// copied at add time so a later catalog edit does not silently reprice a cart.
type CartItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID       uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	StoreCode    enums.StoreCode `gorm:"column:store_code;not null"`
	Name         string          `gorm:"column:name;not null"`
	Unit         string          `gorm:"column:unit;not null"`
	UnitPriceCFA int             `gorm:"column:unit_price_cfa;not null"`
	PromoPrice   *int            `gorm:"column:promo_price_cfa"`
	PromoActive  bool            `gorm:"column:promo_active;not null;default:false"`
	Quantity     int             `gorm:"column:quantity;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCFA returns the promo price when active, the snapshot price otherwise.
func (i CartItem) EffectivePriceCFA() int {
	if i.PromoActive && i.PromoPrice != nil {
		return *i.PromoPrice
	}
	return i.UnitPriceCFA
}

// LineSubtotalCFA is the effective unit price times quantity.
func (i CartItem) LineSubtotalCFA() int {
	return i.EffectivePriceCFA() * i.Quantity
}
