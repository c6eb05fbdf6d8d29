package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/domain/integration"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryIntegrationStore implements integration.Repository for tests
type InMemoryIntegrationStore struct {
	store *InMemoryStore[*integration.Integration]
}

func NewInMemoryIntegrationStore() *InMemoryIntegrationStore {
	return &InMemoryIntegrationStore{
		store: NewInMemoryStore[*integration.Integration](),
	}
}

func (s *InMemoryIntegrationStore) Create(_ context.Context, i *integration.Integration) error {
	return s.store.Create(i.ID, i)
}

func (s *InMemoryIntegrationStore) Get(_ context.Context, id string) (*integration.Integration, error) {
	return s.store.Get(id)
}

func (s *InMemoryIntegrationStore) GetActiveByShopDomain(_ context.Context, shopDomain string) (*integration.Integration, error) {
	shopDomain = integration.NormalizeShopDomain(shopDomain)
	found, ok := s.store.Find(func(i *integration.Integration) bool {
		return i.Platform == types.WebhookPlatformShopify &&
			integration.NormalizeShopDomain(i.ShopDomain) == shopDomain &&
			i.IsActive
	})
	if !ok {
		return nil, ierr.NewError("no active integration for shop domain").
			WithHintf("No connected store matches %s", shopDomain).
			Mark(ierr.ErrIntegrationNotFound)
	}
	return found, nil
}

func (s *InMemoryIntegrationStore) GetActiveByAccountSID(_ context.Context, accountSID string) (*integration.Integration, error) {
	found, ok := s.store.Find(func(i *integration.Integration) bool {
		return i.Platform == types.WebhookPlatformTwilio &&
			i.AccountSID == accountSID &&
			i.IsActive
	})
	if !ok {
		return nil, ierr.NewError("no active integration for account").
			WithHint("No connected messaging account matches the given SID").
			Mark(ierr.ErrIntegrationNotFound)
	}
	return found, nil
}

func (s *InMemoryIntegrationStore) GetActiveForOrganization(ctx context.Context, platform types.WebhookPlatform) (*integration.Integration, error) {
	found, ok := s.store.Find(func(i *integration.Integration) bool {
		return i.OrganizationID == types.GetOrganizationID(ctx) &&
			i.Platform == platform &&
			i.IsActive
	})
	if !ok {
		return nil, ierr.NewError("no active integration for organization").
			WithHintf("Connect %s before using this feature", platform).
			Mark(ierr.ErrIntegrationNotFound)
	}
	return found, nil
}

func (s *InMemoryIntegrationStore) Update(_ context.Context, i *integration.Integration) error {
	return s.store.Update(i.ID, i)
}

func (s *InMemoryIntegrationStore) Clear() {
	s.store.Clear()
}
