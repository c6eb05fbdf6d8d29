package product

import "context"

// Repository defines the interface for product data access
type Repository interface {
	// Upsert inserts the product or overwrites mutable fields when
	// (shopify_id, organization_id) already exists
	Upsert(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	GetByShopifyID(ctx context.Context, shopifyID string) (*Product, error)
	Update(ctx context.Context, product *Product) error
}
