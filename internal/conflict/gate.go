package conflict

import (
	"context"
	"errors"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

// Resolver decides whether a store switch that would drop cart items may
// proceed. Implementations typically relay the question to the shopper.
type Resolver interface {
	Resolve(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (bool, error)
}

// Outcome is the gate's verdict on a requested store switch.
type Outcome string

const (
	// OutcomeNoConflict means the switch needs no confirmation.
	OutcomeNoConflict Outcome = "no_conflict"
	// OutcomeConfirmed means the resolver approved dropping the items.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeDeclined means the switch must not happen.
	OutcomeDeclined Outcome = "declined"
)

// Gate guards store switches that would invalidate cart contents.
type Gate struct {
	resolver Resolver
	logg     *logger.Logger
}

// NewGate builds a Gate around the provided resolver.
func NewGate(resolver Resolver, logg *logger.Logger) (*Gate, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Gate{resolver: resolver, logg: logg}, nil
}

// Request evaluates a switch from current to next given the cart items pinned
// to the current store. An empty cart or an unchanged store never consults the
// resolver. Resolver failures resolve to Declined so a broken confirmation
// channel cannot silently clear a cart.
func (g *Gate) Request(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (Outcome, error) {
	if current == next {
		return OutcomeNoConflict, nil
	}
	if len(items) == 0 {
		return OutcomeNoConflict, nil
	}

	approved, err := g.resolver.Resolve(ctx, current, next, items)
	if err != nil {
		g.logg.Error(ctx, "conflict resolver failed, declining store switch", err)
		return OutcomeDeclined, nil
	}
	if !approved {
		return OutcomeDeclined, nil
	}
	return OutcomeConfirmed, nil
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (bool, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (bool, error) {
	return f(ctx, current, next, items)
}

// AlwaysDecline is a resolver that rejects every conflicting switch. It is the
// safe default when no confirmation channel is wired.
var AlwaysDecline = ResolverFunc(func(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (bool, error) {
	return false, nil
})
