package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/domain/order"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryOrderStore implements order.Repository for tests. Upsert mirrors
// the conflict-target semantics of the real store: one row per
// (shopify_id, organization_id), refund bookkeeping preserved across
// redeliveries.
type InMemoryOrderStore struct {
	store *InMemoryStore[*order.Order]
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		store: NewInMemoryStore[*order.Order](),
	}
}

func notFoundOrder() error {
	return ierr.NewError("order not found").
		WithHint("No order matches the given identifier").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryOrderStore) Upsert(_ context.Context, o *order.Order) error {
	existing, ok := s.store.Find(func(e *order.Order) bool {
		return e.ShopifyID == o.ShopifyID && e.OrganizationID == o.OrganizationID
	})
	if ok {
		existing.CustomerID = o.CustomerID
		existing.OrderNumber = o.OrderNumber
		existing.TotalPrice = o.TotalPrice
		existing.Currency = o.Currency
		existing.PaymentStatus = o.PaymentStatus
		existing.FulfillmentStatus = o.FulfillmentStatus
		existing.PlacedAt = o.PlacedAt
		existing.Status = o.Status
		s.store.Set(existing.ID, existing)
		*o = *existing
		return nil
	}
	s.store.Set(o.ID, o)
	return nil
}

func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if o.OrganizationID != types.GetOrganizationID(ctx) {
		return nil, notFoundOrder()
	}
	return o, nil
}

func (s *InMemoryOrderStore) GetByShopifyID(ctx context.Context, shopifyID string) (*order.Order, error) {
	found, ok := s.store.Find(func(o *order.Order) bool {
		return o.OrganizationID == types.GetOrganizationID(ctx) && o.ShopifyID == shopifyID
	})
	if !ok {
		return nil, notFoundOrder()
	}
	return found, nil
}

func (s *InMemoryOrderStore) Update(_ context.Context, o *order.Order) error {
	return s.store.Update(o.ID, o)
}

func (s *InMemoryOrderStore) Count() int {
	return s.store.Count()
}

func (s *InMemoryOrderStore) Clear() {
	s.store.Clear()
}
