package cart

import (
	"context"
	"errors"

	"storefront/internal/models"
	"storefront/internal/store"
)

// Storage is the durable home of carts, keyed by owner. The Mongo cart
// store implements it in production; tests use an in-memory fake.
type Storage interface {
	Get(ctx context.Context, owner string) (models.Cart, error)
	Put(ctx context.Context, cart models.Cart) error
}

// IsNotFound reports whether err means the owner has no saved cart.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
