package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// InventoryItem tracks per-branch stock counts for a product.
type InventoryItem struct {
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	StoreCode         enums.StoreCode `gorm:"column:store_code;primaryKey"`
	AvailableQty      int             `gorm:"column:available_qty;not null;default:0"`
	ReservedQty       int             `gorm:"column:reserved_qty;not null;default:0"`
	LowStockThreshold *int            `gorm:"column:low_stock_threshold"`
	NextRestockAt     *time.Time      `gorm:"column:next_restock_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// SellableQty returns the stock count net of reservations, floored at zero.
func (i InventoryItem) SellableQty() int {
	qty := i.AvailableQty - i.ReservedQty
	if qty < 0 {
		return 0
	}
	return qty
}
