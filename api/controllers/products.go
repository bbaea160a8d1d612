package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/api/responses"
	"github.com/lemarcheci/storefront-backend/api/validators"
	"github.com/lemarcheci/storefront-backend/internal/availability"
	"github.com/lemarcheci/storefront-backend/internal/products"
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/pagination"
)

// ProductsController serves the read-only catalog and per-store availability.
type ProductsController struct {
	products products.Service
	stock    availability.Service
	logg     *logger.Logger
}

func NewProductsController(catalog products.Service, stock availability.Service, logg *logger.Logger) (*ProductsController, error) {
	if catalog == nil {
		return nil, errors.New("products service is required")
	}
	if stock == nil {
		return nil, errors.New("availability service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &ProductsController{products: catalog, stock: stock, logg: logg}, nil
}

type productListEntry struct {
	models.Product
	Availability *availability.Availability `json:"availability,omitempty"`
}

type productListPayload struct {
	Products []productListEntry `json:"products"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
	HasMore  bool               `json:"has_more"`
}

// List filters and pages the catalog. With a ?store= parameter each row is
// annotated with that branch's availability.
func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, err := parseListQuery(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var store *enums.StoreCode
	if raw := strings.TrimSpace(r.URL.Query().Get("store")); raw != "" {
		code, parseErr := enums.ParseStoreCode(raw)
		if parseErr != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown store code"))
			return
		}
		store = &code
	}

	result, err := c.products.List(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	payload := productListPayload{
		Products: make([]productListEntry, 0, len(result.Products)),
		Total:    result.Total,
		Limit:    result.Limit,
		Offset:   result.Offset,
		HasMore:  result.HasMore,
	}

	var stockByID map[uuid.UUID]availability.Availability
	if store != nil && len(result.Products) > 0 {
		ids := make([]uuid.UUID, 0, len(result.Products))
		for _, p := range result.Products {
			ids = append(ids, p.ID)
		}
		stockByID, err = c.stock.CheckBatch(ctx, ids, *store)
		if err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
	}

	for _, p := range result.Products {
		entry := productListEntry{Product: p}
		if stockByID != nil {
			if stock, ok := stockByID[p.ID]; ok {
				stockCopy := stock
				entry.Availability = &stockCopy
			}
		}
		payload.Products = append(payload.Products, entry)
	}

	responses.WriteSuccess(w, payload)
}

func (c *ProductsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := validators.ParseUUIDParam(chi.URLParam(r, "productId"), "productId")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	product, err := c.products.Get(ctx, productID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}

// Availability answers stock for one product at one branch. The store query
// parameter is required.
func (c *ProductsController) Availability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := validators.ParseUUIDParam(chi.URLParam(r, "productId"), "productId")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	store, err := enums.ParseStoreCode(strings.TrimSpace(r.URL.Query().Get("store")))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store query parameter is required"))
		return
	}

	if _, err := c.products.Get(ctx, productID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	stock, err := c.stock.Check(ctx, productID, store)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, stock)
}

func (c *ProductsController) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := c.products.ListCategories(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"categories": rows})
}

func parseListQuery(r *http.Request) (products.ListInput, error) {
	input := products.ListInput{
		CategorySlug: validators.ParseQueryStringPtr(r, "category"),
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
	}

	priceMin, err := validators.ParseQueryIntPtr(r, "price_min", 0, 100_000_000)
	if err != nil {
		return products.ListInput{}, err
	}
	input.PriceMinCFA = priceMin

	priceMax, err := validators.ParseQueryIntPtr(r, "price_max", 0, 100_000_000)
	if err != nil {
		return products.ListInput{}, err
	}
	input.PriceMaxCFA = priceMax

	if raw := strings.TrimSpace(r.URL.Query().Get("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				input.Tags = append(input.Tags, tag)
			}
		}
	}

	featured, err := validators.ParseQueryBoolPtr(r, "featured")
	if err != nil {
		return products.ListInput{}, err
	}
	input.Featured = featured

	specialty, err := validators.ParseQueryBoolPtr(r, "specialty")
	if err != nil {
		return products.ListInput{}, err
	}
	input.Specialty = specialty

	if raw := strings.TrimSpace(r.URL.Query().Get("order_by")); raw != "" {
		orderBy, parseErr := enums.ParseProductOrderBy(raw)
		if parseErr != nil {
			return products.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order_by")
		}
		input.OrderBy = orderBy
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("direction")); raw != "" {
		direction, parseErr := enums.ParseSortDirection(raw)
		if parseErr != nil {
			return products.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown direction")
		}
		input.Direction = direction
	}

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return products.ListInput{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
	if err != nil {
		return products.ListInput{}, err
	}
	input.Page = pagination.Params{Limit: limit, Offset: offset}

	return input, nil
}
