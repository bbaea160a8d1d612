package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// Repository reads the product catalog.
type Repository interface {
	List(ctx context.Context, input ListInput) ([]models.Product, int64, error)
	GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetActive(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed catalog reader.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &repository{db: db}, nil
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !input.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if input.CategorySlug != nil {
		query = query.Where("category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", *input.CategorySlug))
	}
	if input.PriceMinCFA != nil {
		query = query.Where("price_cfa >= ?", *input.PriceMinCFA)
	}
	if input.PriceMaxCFA != nil {
		query = query.Where("price_cfa <= ?", *input.PriceMaxCFA)
	}
	if len(input.Tags) > 0 {
		query = query.Where("tags && ?", pq.Array(input.Tags))
	}
	if input.Featured != nil {
		query = query.Where("is_featured = ?", *input.Featured)
	}
	if input.Specialty != nil {
		query = query.Where("is_specialty = ?", *input.Specialty)
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order(orderClause(input.OrderBy, input.Direction)).
		Limit(input.Page.Limit).
		Offset(input.Page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func orderClause(orderBy enums.ProductOrderBy, direction enums.SortDirection) string {
	column := "name"
	switch orderBy {
	case enums.ProductOrderByPrice:
		column = "price_cfa"
	case enums.ProductOrderByCreatedAt:
		column = "created_at"
	}
	dir := "ASC"
	if direction == enums.SortDesc {
		dir = "DESC"
	}
	return column + " " + dir
}

func (r *repository) GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) GetActive(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Order("position ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
