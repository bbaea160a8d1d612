package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a canonical catalog listing shared by every branch.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID   uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Name         string          `gorm:"column:name;not null"`
	Slug         string          `gorm:"column:slug;not null;uniqueIndex"`
	Description  *string         `gorm:"column:description"`
	PriceCFA     int             `gorm:"column:price_cfa;not null"`
	PromoPrice   *int            `gorm:"column:promo_price_cfa"`
	PromoActive  bool            `gorm:"column:promo_active;not null;default:false"`
	Unit         string          `gorm:"column:unit;not null"`
	Tags         pq.StringArray  `gorm:"column:tags;type:text[]"`
	ImageURL     *string         `gorm:"column:image_url"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	IsFeatured   bool            `gorm:"column:is_featured;not null;default:false"`
	IsSpecialty  bool            `gorm:"column:is_specialty;not null;default:false"`
	Inventory    []InventoryItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCFA returns the promo price when active, the base price otherwise.
func (p Product) EffectivePriceCFA() int {
	if p.PromoActive && p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.PriceCFA
}
