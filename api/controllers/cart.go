package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/api/responses"
	"github.com/lemarcheci/storefront-backend/api/validators"
	"github.com/lemarcheci/storefront-backend/internal/cart"
	"github.com/lemarcheci/storefront-backend/internal/checkout"
	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

// CartController serves the session cart.
type CartController struct {
	cart     cart.Service
	checkout checkout.Service
	logg     *logger.Logger
}

func NewCartController(carts cart.Service, quotes checkout.Service, logg *logger.Logger) (*CartController, error) {
	if carts == nil {
		return nil, errors.New("cart service is required")
	}
	if quotes == nil {
		return nil, errors.New("checkout service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &CartController{cart: carts, checkout: quotes, logg: logg}, nil
}

// Get returns the cart summary. With a ?method= parameter the summary folds
// in that method's fees.
func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	fees := cart.FeeContext{}
	if raw := strings.TrimSpace(r.URL.Query().Get("method")); raw != "" {
		method, parseErr := enums.ParseDeliveryMethod(raw)
		if parseErr != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method"))
			return
		}
		quote, quoteErr := c.checkout.QuoteFees(method)
		if quoteErr != nil {
			responses.WriteError(ctx, c.logg, w, quoteErr)
			return
		}
		fees = cart.FeeContext{
			DeliveryFeeCFA:    quote.DeliveryFeeCFA,
			PreparationFeeCFA: quote.PreparationFeeCFA,
		}
	}

	summary, err := c.cart.GetCart(ctx, sessionID, fees)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, summary)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Store     string `json:"store" validate:"required"`
	Confirm   bool   `json:"confirm"`
}

// AddItem inserts or merges a line. An aborted store switch comes back with
// status 409 semantics expressed in the body, not an error.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body addItemRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
		return
	}
	store, err := enums.ParseStoreCode(body.Store)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown store code"))
		return
	}

	result, err := c.cart.AddItem(conflict.WithConfirmation(ctx, body.Confirm), sessionID, cart.AddItemInput{
		ProductID: productID,
		Quantity:  body.Quantity,
		Store:     store,
	})
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	status := http.StatusCreated
	if result.Status == cart.AddStatusAborted {
		status = http.StatusOK
	}
	responses.WriteSuccessStatus(w, status, result)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	productID, err := validators.ParseUUIDParam(chi.URLParam(r, "productId"), "productId")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body updateQuantityRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	summary, err := c.cart.UpdateQuantity(ctx, sessionID, productID, body.Quantity)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, summary)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	productID, err := validators.ParseUUIDParam(chi.URLParam(r, "productId"), "productId")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	summary, err := c.cart.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, summary)
}
