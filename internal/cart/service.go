package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/internal/availability"
	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/pkg/db"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetActive(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

type stockChecker interface {
	Check(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (availability.Availability, error)
}

// Service owns session carts: line mutations, the store pin, and derived totals.
type Service interface {
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (AddResult, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (Summary, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (Summary, error)
	GetCart(ctx context.Context, sessionID string, fees FeeContext) (Summary, error)
	ItemsBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	ClearStoreItems(ctx context.Context, sessionID string, store enums.StoreCode) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	stock    stockChecker
	gate     *conflict.Gate
	logg     *logger.Logger
}

// NewService wires the cart service.
func NewService(repo Repository, tx txRunner, products productLoader, stock stockChecker, gate *conflict.Gate, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if products == nil {
		return nil, errors.New("product loader is required")
	}
	if stock == nil {
		return nil, errors.New("stock checker is required")
	}
	if gate == nil {
		return nil, errors.New("conflict gate is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, tx: tx, products: products, stock: stock, gate: gate, logg: logg}, nil
}

// AddItem validates the product and its stock at the requested store, then
// inserts or merges the line. When the cart is pinned to another store the
// conflict gate decides; a declined switch yields AddStatusAborted with the
// cart untouched.
func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (AddResult, error) {
	if input.Quantity < 1 {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.Store.IsValid() {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown store code")
	}

	product, err := s.products.GetActive(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return AddResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	stock, err := s.stock.Check(ctx, input.ProductID, input.Store)
	if err != nil {
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking availability")
	}
	if !stock.IsAvailable {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeConflict, "product is not available at this store").
			WithDetails(map[string]any{"product_id": input.ProductID, "store": input.Store})
	}

	record, err := s.repo.GetOrCreate(ctx, sessionID)
	if err != nil {
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	if record.StoreCode != nil && *record.StoreCode != input.Store {
		outcome, err := s.gate.Request(ctx, *record.StoreCode, input.Store, record.Items)
		if err != nil {
			return AddResult{}, err
		}
		if outcome == conflict.OutcomeDeclined {
			return AddResult{Status: AddStatusAborted, Cart: summarize(record, FeeContext{})}, nil
		}
		if outcome == conflict.OutcomeConfirmed {
			if err := s.clearStore(ctx, record.ID, *record.StoreCode); err != nil {
				return AddResult{}, err
			}
			record.Items = nil
			record.StoreCode = nil
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindItem(ctx, record.ID, input.ProductID)
		if err == nil {
			return repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+input.Quantity)
		}
		if !db.IsNotFound(err) {
			return err
		}

		item := &models.CartItem{
			CartID:       record.ID,
			ProductID:    product.ID,
			StoreCode:    input.Store,
			Name:         product.Name,
			Unit:         product.Unit,
			UnitPriceCFA: product.PriceCFA,
			PromoPrice:   product.PromoPrice,
			PromoActive:  product.PromoActive,
			Quantity:     input.Quantity,
		}
		if err := repo.InsertItem(ctx, item); err != nil {
			return err
		}
		store := input.Store
		return repo.SetStore(ctx, record.ID, &store)
	})
	if err != nil {
		// A concurrent add of the same line loses the insert race on the
		// cart+product unique index.
		if db.IsUniqueViolation(err, "idx_cart_items_cart_product") {
			return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed concurrently, retry the request")
		}
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart item")
	}

	fresh, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		return AddResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading cart")
	}
	return AddResult{Status: AddStatusAdded, Cart: summarize(fresh, FeeContext{})}, nil
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (Summary, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	record, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	item, err := s.repo.FindItem(ctx, record.ID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart item")
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, qty); err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating quantity")
	}
	return s.GetCart(ctx, sessionID, FeeContext{})
}

// RemoveItem drops a line unconditionally. Removing the last line unpins the
// cart from its store.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (Summary, error) {
	record, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return summarize(nil, FeeContext{}), nil
		}
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItem(ctx, record.ID, productID); err != nil {
			return err
		}
		items, err := repo.ItemsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return repo.SetStore(ctx, record.ID, nil)
		}
		return nil
	})
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing cart item")
	}
	return s.GetCart(ctx, sessionID, FeeContext{})
}

// GetCart derives the summary on every call; totals are never stored.
func (s *service) GetCart(ctx context.Context, sessionID string, fees FeeContext) (Summary, error) {
	record, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return summarize(nil, fees), nil
		}
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return summarize(record, fees), nil
}

// ItemsBySession exposes raw cart lines to the selection service.
func (s *service) ItemsBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return s.repo.ItemsBySession(ctx, sessionID)
}

// ClearStoreItems drops every line tagged with the store. Used on confirmed
// store switches.
func (s *service) ClearStoreItems(ctx context.Context, sessionID string, store enums.StoreCode) error {
	record, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return s.clearStore(ctx, record.ID, store)
}

func (s *service) clearStore(ctx context.Context, cartID uuid.UUID, store enums.StoreCode) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteStoreItems(ctx, cartID, store); err != nil {
			return err
		}
		return repo.SetStore(ctx, cartID, nil)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing store items")
	}
	return nil
}
