package models

import (
	"time"

	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// Store is one of the physical branches serving orders.
type Store struct {
	Code      enums.StoreCode `gorm:"column:code;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	District  string          `gorm:"column:district;not null"`
	Address   string          `gorm:"column:address;not null"`
	Phone     *string         `gorm:"column:phone"`
	Lat       float64         `gorm:"column:lat;not null"`
	Lng       float64         `gorm:"column:lng;not null"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
