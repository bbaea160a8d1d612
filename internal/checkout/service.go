package checkout

import (
	"context"
	"errors"

	"github.com/lemarcheci/storefront-backend/internal/cart"
	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
)

type cartReader interface {
	GetCart(ctx context.Context, sessionID string, fees cart.FeeContext) (cart.Summary, error)
}

// FeeQuote is the per-method fee breakdown in whole CFA francs.
type FeeQuote struct {
	Method            enums.DeliveryMethod `json:"method"`
	DeliveryFeeCFA    int                  `json:"delivery_fee_cfa"`
	PreparationFeeCFA int                  `json:"preparation_fee_cfa"`
}

// Quote combines the cart summary with the fee breakdown for one method.
type Quote struct {
	Method enums.DeliveryMethod `json:"method"`
	Fees   FeeQuote             `json:"fees"`
	Cart   cart.Summary         `json:"cart"`
}

// Service prices checkouts. Fees are fixed per delivery method; there is no
// payment processing here.
type Service interface {
	QuoteFees(method enums.DeliveryMethod) (FeeQuote, error)
	QuoteCheckout(ctx context.Context, sessionID string, method enums.DeliveryMethod) (Quote, error)
}

type service struct {
	carts cartReader
	cfg   config.CheckoutConfig
}

// NewService wires the checkout service.
func NewService(carts cartReader, cfg config.CheckoutConfig) (Service, error) {
	if carts == nil {
		return nil, errors.New("cart reader is required")
	}
	return &service{carts: carts, cfg: cfg}, nil
}

// QuoteFees returns the configured fees for a delivery method. Pickup carries
// no delivery fee.
func (s *service) QuoteFees(method enums.DeliveryMethod) (FeeQuote, error) {
	switch method {
	case enums.DeliveryMethodDelivery:
		return FeeQuote{
			Method:            method,
			DeliveryFeeCFA:    s.cfg.DeliveryFeeCFA,
			PreparationFeeCFA: s.cfg.DeliveryPreparationCFA,
		}, nil
	case enums.DeliveryMethodPickup:
		return FeeQuote{
			Method:            method,
			PreparationFeeCFA: s.cfg.PickupPreparationCFA,
		}, nil
	}
	return FeeQuote{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
}

// QuoteCheckout folds the method's fees into the cart totals. An empty cart
// cannot be quoted.
func (s *service) QuoteCheckout(ctx context.Context, sessionID string, method enums.DeliveryMethod) (Quote, error) {
	fees, err := s.QuoteFees(method)
	if err != nil {
		return Quote{}, err
	}

	summary, err := s.carts.GetCart(ctx, sessionID, cart.FeeContext{
		DeliveryFeeCFA:    fees.DeliveryFeeCFA,
		PreparationFeeCFA: fees.PreparationFeeCFA,
	})
	if err != nil {
		return Quote{}, err
	}
	if len(summary.Items) == 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	return Quote{Method: method, Fees: fees, Cart: summary}, nil
}
