package cart

import (
	"context"
	"fmt"

	"storefront/internal/models"
)

// Merge migrates an anonymous draft cart into the authenticated user's
// cart, at most once. An existing non-empty authenticated cart wins;
// otherwise the anonymous lines are adopted. The anonymous cart is marked
// and emptied, so running the migration again is a no-op and never
// duplicates lines.
func Merge(ctx context.Context, storage Storage, sessionOwner, userOwner string) error {
	if sessionOwner == "" || userOwner == "" {
		return fmt.Errorf("merge cart: both owners are required")
	}

	anon, err := storage.Get(ctx, sessionOwner)
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("merge cart: load anonymous: %w", err)
	}

	if anon.MigratedTo != "" || len(anon.Items) == 0 {
		return nil
	}

	adopt := true
	userCart, err := storage.Get(ctx, userOwner)
	switch {
	case IsNotFound(err):
		userCart = models.Cart{Owner: userOwner}
	case err != nil:
		return fmt.Errorf("merge cart: load user cart: %w", err)
	case len(userCart.Items) > 0:
		adopt = false
	}

	if adopt {
		userCart.Items = anon.Items
		if err := storage.Put(ctx, userCart); err != nil {
			return fmt.Errorf("merge cart: save user cart: %w", err)
		}
	}

	anon.Items = nil
	anon.MigratedTo = userOwner
	if err := storage.Put(ctx, anon); err != nil {
		return fmt.Errorf("merge cart: mark anonymous: %w", err)
	}

	return nil
}
