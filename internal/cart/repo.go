package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// Repository persists session carts and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetBySession(ctx context.Context, sessionID string) (*models.CartRecord, error)
	GetOrCreate(ctx context.Context, sessionID string) (*models.CartRecord, error)
	ItemsBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	InsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	DeleteStoreItems(ctx context.Context, cartID uuid.UUID, store enums.StoreCode) error
	SetStore(ctx context.Context, cartID uuid.UUID, store *enums.StoreCode) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed cart repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &repository{db: db}, nil
}

// WithTx returns a repository bound to the supplied transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetBySession(ctx context.Context, sessionID string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("session_id = ?", sessionID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) GetOrCreate(ctx context.Context, sessionID string) (*models.CartRecord, error) {
	record, err := r.GetBySession(ctx, sessionID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.CartRecord{ID: uuid.New(), SessionID: sessionID}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

func (r *repository) ItemsBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	record, err := r.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.Items, nil
}

func (r *repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) InsertItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) DeleteStoreItems(ctx context.Context, cartID uuid.UUID, store enums.StoreCode) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND store_code = ?", cartID, store).
		Delete(&models.CartItem{}).Error
}

func (r *repository) SetStore(ctx context.Context, cartID uuid.UUID, store *enums.StoreCode) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(map[string]any{"store_code": store, "updated_at": time.Now().UTC()}).Error
}
