package conflict

import (
	"context"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

type confirmationKey struct{}

// WithConfirmation marks the request as carrying the shopper's explicit
// approval to drop conflicting cart items.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmationKey{}, confirmed)
}

// ConfirmationFromContext reports whether the shopper approved the switch.
func ConfirmationFromContext(ctx context.Context) bool {
	confirmed, _ := ctx.Value(confirmationKey{}).(bool)
	return confirmed
}

// ContextResolver approves a conflicting switch only when the request context
// carries the shopper's confirmation. Clients first get a declined outcome,
// surface the conflict, and retry with confirm set.
var ContextResolver = ResolverFunc(func(ctx context.Context, current, next enums.StoreCode, items []models.CartItem) (bool, error) {
	return ConfirmationFromContext(ctx), nil
})
