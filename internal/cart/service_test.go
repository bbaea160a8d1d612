package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lemarcheci/storefront-backend/internal/availability"
	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

type passthroughTx struct {
	db *gorm.DB
}

func (p *passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(p.db)
}

type stubProducts struct {
	products map[uuid.UUID]models.Product
}

func (s *stubProducts) GetActive(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

type stubStock struct {
	unavailable map[uuid.UUID]bool
}

func (s *stubStock) Check(ctx context.Context, productID uuid.UUID, store enums.StoreCode) (availability.Availability, error) {
	if s.unavailable[productID] {
		return availability.Availability{ProductID: productID, StoreCode: store}, nil
	}
	return availability.Availability{ProductID: productID, StoreCode: store, IsAvailable: true, Quantity: 50}, nil
}

type approvingResolver struct {
	answer bool
	calls  int
}

func (r *approvingResolver) Resolve(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (bool, error) {
	r.calls++
	return r.answer, nil
}

type cartFixture struct {
	svc      Service
	products *stubProducts
	stock    *stubStock
	resolver *approvingResolver
}

func newCartFixture(t *testing.T, approve bool) *cartFixture {
	t.Helper()
	gdb := setupCartTestDB(t)
	repo, err := NewRepository(gdb)
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	resolver := &approvingResolver{answer: approve}
	gate, err := conflict.NewGate(resolver, logg)
	require.NoError(t, err)

	products := &stubProducts{products: map[uuid.UUID]models.Product{}}
	stock := &stubStock{unavailable: map[uuid.UUID]bool{}}
	svc, err := NewService(repo, &passthroughTx{db: gdb}, products, stock, gate, logg)
	require.NoError(t, err)
	return &cartFixture{svc: svc, products: products, stock: stock, resolver: resolver}
}

func (f *cartFixture) seedProduct(priceCFA int) uuid.UUID {
	id := uuid.New()
	f.products.products[id] = models.Product{
		ID:       id,
		Name:     "Attiéké",
		Unit:     "500g",
		PriceCFA: priceCFA,
		IsActive: true,
	}
	return id
}

func (f *cartFixture) seedPromoProduct(priceCFA, promoCFA int) uuid.UUID {
	id := uuid.New()
	promo := promoCFA
	f.products.products[id] = models.Product{
		ID:          id,
		Name:        "Poisson braisé",
		Unit:        "piece",
		PriceCFA:    priceCFA,
		PromoPrice:  &promo,
		PromoActive: true,
		IsActive:    true,
	}
	return id
}

func TestAddItemCreatesLineAndPinsStore(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)

	result, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: productID, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)

	assert.Equal(t, AddStatusAdded, result.Status)
	require.NotNil(t, result.Cart.StoreCode)
	assert.Equal(t, enums.StoreCocody, *result.Cart.StoreCode)
	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, 2, result.Cart.TotalItems)
	assert.Equal(t, 1000, result.Cart.SubtotalCFA)
}

func TestAddItemMergesSameProductSameStore(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 1, Store: enums.StoreCocody})
	require.NoError(t, err)
	result, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 3, Store: enums.StoreCocody})
	require.NoError(t, err)

	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, 4, result.Cart.Items[0].Quantity)
	assert.Equal(t, 2000, result.Cart.SubtotalCFA)
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: productID, Quantity: 0, Store: enums.StoreCocody})
	require.Error(t, err)
}

func TestAddItemUnknownProduct(t *testing.T) {
	f := newCartFixture(t, false)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: uuid.New(), Quantity: 1, Store: enums.StoreCocody})
	require.Error(t, err)
}

func TestAddItemUnavailableProduct(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)
	f.stock.unavailable[productID] = true

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: productID, Quantity: 1, Store: enums.StoreCocody})
	require.Error(t, err)
}

func TestAddItemDifferentStoreDeclinedAborts(t *testing.T) {
	f := newCartFixture(t, false)
	first := f.seedProduct(500)
	second := f.seedProduct(750)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: first, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)
	result, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: second, Quantity: 1, Store: enums.StoreKoumassi})
	require.NoError(t, err)

	assert.Equal(t, AddStatusAborted, result.Status)
	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, enums.StoreCocody, result.Cart.Items[0].StoreCode)
	assert.Equal(t, 1, f.resolver.calls)
}

func TestAddItemDifferentStoreConfirmedReplacesCart(t *testing.T) {
	f := newCartFixture(t, true)
	first := f.seedProduct(500)
	second := f.seedProduct(750)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: first, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)
	result, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: second, Quantity: 1, Store: enums.StoreKoumassi})
	require.NoError(t, err)

	assert.Equal(t, AddStatusAdded, result.Status)
	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, enums.StoreKoumassi, result.Cart.Items[0].StoreCode)
	assert.Equal(t, 750, result.Cart.SubtotalCFA)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)
	summary, err := f.svc.UpdateQuantity(ctx, "sess-1", productID, 0)
	require.NoError(t, err)

	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.SubtotalCFA)
	assert.Nil(t, summary.StoreCode, "empty cart should unpin its store")
}

func TestUpdateQuantitySetsNewValue(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)
	summary, err := f.svc.UpdateQuantity(ctx, "sess-1", productID, 7)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 7, summary.Items[0].Quantity)
	assert.Equal(t, 3500, summary.SubtotalCFA)
}

func TestRemoveItemUnconditional(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)
	summary, err := f.svc.RemoveItem(ctx, "sess-1", productID)
	require.NoError(t, err)

	assert.Empty(t, summary.Items)
}

func TestGetCartTwoAttiekeAtCocody(t *testing.T) {
	// Two 500 CFA items at COCODY with delivery fees: 1000 + 1500 + 500.
	f := newCartFixture(t, false)
	productID := f.seedProduct(500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 1, Store: enums.StoreCocody})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 1, Store: enums.StoreCocody})
	require.NoError(t, err)

	summary, err := f.svc.GetCart(ctx, "sess-1", FeeContext{DeliveryFeeCFA: 1500, PreparationFeeCFA: 500})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, 1000, summary.SubtotalCFA)
	assert.Equal(t, 1500, summary.DeliveryFeeCFA)
	assert.Equal(t, 500, summary.PreparationFeeCFA)
	assert.Equal(t, 3000, summary.TotalCFA)
}

func TestGetCartUsesActivePromoPrice(t *testing.T) {
	f := newCartFixture(t, false)
	productID := f.seedPromoProduct(2000, 1500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 2, Store: enums.StoreKoumassi})
	require.NoError(t, err)
	summary, err := f.svc.GetCart(ctx, "sess-1", FeeContext{})
	require.NoError(t, err)

	assert.Equal(t, 3000, summary.SubtotalCFA)
}

func TestGetCartMissingSessionIsEmpty(t *testing.T) {
	f := newCartFixture(t, false)

	summary, err := f.svc.GetCart(context.Background(), "nobody", FeeContext{DeliveryFeeCFA: 1500, PreparationFeeCFA: 500})
	require.NoError(t, err)

	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.TotalCFA)
}

func TestClearStoreItemsDropsOnlyThatStore(t *testing.T) {
	f := newCartFixture(t, true)
	productID := f.seedProduct(500)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: productID, Quantity: 2, Store: enums.StoreCocody})
	require.NoError(t, err)
	require.NoError(t, f.svc.ClearStoreItems(ctx, "sess-1", enums.StoreCocody))

	items, err := f.svc.ItemsBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}
