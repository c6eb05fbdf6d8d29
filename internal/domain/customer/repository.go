package customer

import "context"

// Repository defines the interface for customer data access
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
	GetByShopifyID(ctx context.Context, shopifyID string) (*Customer, error)
	Update(ctx context.Context, customer *Customer) error
}
