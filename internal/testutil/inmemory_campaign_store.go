package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/domain/campaign"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryCampaignStore implements campaign.Repository for tests
type InMemoryCampaignStore struct {
	store *InMemoryStore[*campaign.Campaign]
}

func NewInMemoryCampaignStore() *InMemoryCampaignStore {
	return &InMemoryCampaignStore{
		store: NewInMemoryStore[*campaign.Campaign](),
	}
}

func notFoundCampaign() error {
	return ierr.NewError("campaign not found").
		WithHint("No campaign matches the given identifier").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryCampaignStore) Create(_ context.Context, c *campaign.Campaign) error {
	return s.store.Create(c.ID, c)
}

func (s *InMemoryCampaignStore) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != types.GetOrganizationID(ctx) {
		return nil, notFoundCampaign()
	}
	return c, nil
}

func (s *InMemoryCampaignStore) Update(_ context.Context, c *campaign.Campaign) error {
	return s.store.Update(c.ID, c)
}

func (s *InMemoryCampaignStore) UpdateStats(ctx context.Context, id string, stats campaign.Stats) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Stats = stats
	s.store.Set(c.ID, c)
	return nil
}

func (s *InMemoryCampaignStore) Clear() {
	s.store.Clear()
}
