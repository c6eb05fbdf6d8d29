package campaign

import "context"

// Repository defines the interface for campaign data access
type Repository interface {
	Create(ctx context.Context, campaign *Campaign) error
	Get(ctx context.Context, id string) (*Campaign, error)
	Update(ctx context.Context, campaign *Campaign) error
	UpdateStats(ctx context.Context, id string, stats Stats) error
}
