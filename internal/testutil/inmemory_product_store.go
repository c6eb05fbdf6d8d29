package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/domain/product"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryProductStore implements product.Repository for tests
type InMemoryProductStore struct {
	store *InMemoryStore[*product.Product]
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		store: NewInMemoryStore[*product.Product](),
	}
}

func notFoundProduct() error {
	return ierr.NewError("product not found").
		WithHint("No product matches the given identifier").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryProductStore) Upsert(_ context.Context, p *product.Product) error {
	existing, ok := s.store.Find(func(e *product.Product) bool {
		return e.ShopifyID != nil && p.ShopifyID != nil &&
			*e.ShopifyID == *p.ShopifyID && e.OrganizationID == p.OrganizationID
	})
	if ok {
		existing.Title = p.Title
		existing.Description = p.Description
		existing.Price = p.Price
		existing.Currency = p.Currency
		existing.ImageURL = p.ImageURL
		existing.Inventory = p.Inventory
		existing.Status = p.Status
		s.store.Set(existing.ID, existing)
		*p = *existing
		return nil
	}
	s.store.Set(p.ID, p)
	return nil
}

func (s *InMemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if p.OrganizationID != types.GetOrganizationID(ctx) {
		return nil, notFoundProduct()
	}
	return p, nil
}

func (s *InMemoryProductStore) GetByShopifyID(ctx context.Context, shopifyID string) (*product.Product, error) {
	found, ok := s.store.Find(func(p *product.Product) bool {
		return p.OrganizationID == types.GetOrganizationID(ctx) &&
			p.ShopifyID != nil && *p.ShopifyID == shopifyID
	})
	if !ok {
		return nil, notFoundProduct()
	}
	return found, nil
}

func (s *InMemoryProductStore) Update(_ context.Context, p *product.Product) error {
	return s.store.Update(p.ID, p)
}

func (s *InMemoryProductStore) Count() int {
	return s.store.Count()
}

func (s *InMemoryProductStore) Clear() {
	s.store.Clear()
}
