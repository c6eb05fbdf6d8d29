package order

import "context"

// Repository defines the interface for order data access
type Repository interface {
	// Upsert inserts the order or, when (shopify_id, organization_id) already
	// exists, overwrites its mutable fields. Must be atomic at the store level
	// so concurrent deliveries of the same event race to one row.
	Upsert(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByShopifyID(ctx context.Context, shopifyID string) (*Order, error)
	Update(ctx context.Context, order *Order) error
}
