package stores

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// Repository reads the fixed store catalog.
type Repository interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	GetStore(ctx context.Context, code enums.StoreCode) (*models.Store, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed store catalog reader.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &repository{db: db}, nil
}

// ListStores returns active stores in canonical code order.
func (r *repository) ListStores(ctx context.Context) ([]models.Store, error) {
	var rows []models.Store
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byCode := make(map[enums.StoreCode]models.Store, len(rows))
	for _, row := range rows {
		byCode[row.Code] = row
	}
	ordered := make([]models.Store, 0, len(rows))
	for _, code := range enums.StoreCodes() {
		if row, ok := byCode[code]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

func (r *repository) GetStore(ctx context.Context, code enums.StoreCode) (*models.Store, error) {
	var row models.Store
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
