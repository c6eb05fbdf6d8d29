package cart

import "context"

// Repository defines the interface for abandoned cart data access
type Repository interface {
	// Upsert inserts the cart or refreshes it when (checkout_id,
	// organization_id) already exists
	Upsert(ctx context.Context, cart *AbandonedCart) error
	Get(ctx context.Context, id string) (*AbandonedCart, error)
	GetByCheckoutID(ctx context.Context, checkoutID string) (*AbandonedCart, error)
	Update(ctx context.Context, cart *AbandonedCart) error
}
