package products

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/db"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/pagination"
)

// Service serves the read-only product catalog.
type Service interface {
	List(ctx context.Context, input ListInput) (ListResult, error)
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetActive(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo Repository
}

// NewService wires the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (ListResult, error) {
	if input.OrderBy != "" && !input.OrderBy.IsValid() {
		return ListResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order_by")
	}
	if input.Direction != "" && !input.Direction.IsValid() {
		return ListResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown direction")
	}
	if input.PriceMinCFA != nil && *input.PriceMinCFA < 0 {
		return ListResult{}, pkgerrors.New(pkgerrors.CodeValidation, "price_min must be non-negative")
	}
	if input.PriceMinCFA != nil && input.PriceMaxCFA != nil && *input.PriceMinCFA > *input.PriceMaxCFA {
		return ListResult{}, pkgerrors.New(pkgerrors.CodeValidation, "price_min exceeds price_max")
	}

	input.Page = pagination.Normalize(input.Page)

	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	if rows == nil {
		rows = []models.Product{}
	}
	return ListResult{
		Products: rows,
		Total:    total,
		Limit:    input.Page.Limit,
		Offset:   input.Page.Offset,
		HasMore:  pagination.HasMore(total, input.Page),
	}, nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	row, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return row, nil
}

// GetActive is the cart-facing lookup; inactive products read as missing.
func (s *service) GetActive(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.repo.GetActive(ctx, productID)
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories")
	}
	return rows, nil
}
