package controllers

import (
	"errors"
	"net/http"

	"github.com/lemarcheci/storefront-backend/api/responses"
	"github.com/lemarcheci/storefront-backend/api/validators"
	"github.com/lemarcheci/storefront-backend/internal/checkout"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

// CheckoutController prices carts. There is no order placement or payment.
type CheckoutController struct {
	checkout checkout.Service
	logg     *logger.Logger
}

func NewCheckoutController(quotes checkout.Service, logg *logger.Logger) (*CheckoutController, error) {
	if quotes == nil {
		return nil, errors.New("checkout service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &CheckoutController{checkout: quotes, logg: logg}, nil
}

type quoteRequest struct {
	Method string `json:"method" validate:"required"`
}

// Quote folds the chosen method's fees into the current cart totals.
func (c *CheckoutController) Quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body quoteRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	method, err := enums.ParseDeliveryMethod(body.Method)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method"))
		return
	}

	quote, err := c.checkout.QuoteCheckout(ctx, sessionID, method)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, quote)
}
