package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// Repository exposes inventory reads for availability checks.
type Repository interface {
	GetInventory(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (*models.InventoryItem, error)
	ListInventory(ctx context.Context, productIDs []uuid.UUID, store enums.StoreCode) ([]models.InventoryItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed inventory reader.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &repository{db: db}, nil
}

func (r *repository) GetInventory(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND store_code = ?", productID, store).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListInventory(ctx context.Context, productIDs []uuid.UUID, store enums.StoreCode) ([]models.InventoryItem, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id IN ? AND store_code = ?", productIDs, store).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
