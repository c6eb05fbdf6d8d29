package integration

import (
	"context"

	"github.com/loopreach/loopreach/internal/types"
)

// Repository defines the interface for integration data access.
// The lookup-by-hint methods run before any organization context exists;
// they are the only cross-tenant reads in the system.
type Repository interface {
	Create(ctx context.Context, integration *Integration) error
	Get(ctx context.Context, id string) (*Integration, error)
	GetActiveByShopDomain(ctx context.Context, shopDomain string) (*Integration, error)
	GetActiveByAccountSID(ctx context.Context, accountSID string) (*Integration, error)
	GetActiveForOrganization(ctx context.Context, platform types.WebhookPlatform) (*Integration, error)
	Update(ctx context.Context, integration *Integration) error
}
