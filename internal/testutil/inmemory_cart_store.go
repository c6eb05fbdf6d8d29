package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/domain/cart"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryCartStore implements cart.Repository for tests. Upsert keeps one
// row per (checkout_id, organization_id) and preserves RecoveredAt across
// snapshot refreshes.
type InMemoryCartStore struct {
	store *InMemoryStore[*cart.AbandonedCart]
}

func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		store: NewInMemoryStore[*cart.AbandonedCart](),
	}
}

func notFoundCart() error {
	return ierr.NewError("abandoned cart not found").
		WithHint("No abandoned cart matches the given identifier").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryCartStore) Upsert(_ context.Context, c *cart.AbandonedCart) error {
	existing, ok := s.store.Find(func(e *cart.AbandonedCart) bool {
		return e.CheckoutID == c.CheckoutID && e.OrganizationID == c.OrganizationID
	})
	if ok {
		existing.CustomerID = c.CustomerID
		existing.Email = c.Email
		existing.Phone = c.Phone
		existing.TotalPrice = c.TotalPrice
		existing.Currency = c.Currency
		existing.RecoveryURL = c.RecoveryURL
		existing.AbandonedAt = c.AbandonedAt
		existing.RemindAt = c.RemindAt
		s.store.Set(existing.ID, existing)
		*c = *existing
		return nil
	}
	s.store.Set(c.ID, c)
	return nil
}

func (s *InMemoryCartStore) Get(ctx context.Context, id string) (*cart.AbandonedCart, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != types.GetOrganizationID(ctx) {
		return nil, notFoundCart()
	}
	return c, nil
}

func (s *InMemoryCartStore) GetByCheckoutID(ctx context.Context, checkoutID string) (*cart.AbandonedCart, error) {
	found, ok := s.store.Find(func(c *cart.AbandonedCart) bool {
		return c.OrganizationID == types.GetOrganizationID(ctx) && c.CheckoutID == checkoutID
	})
	if !ok {
		return nil, notFoundCart()
	}
	return found, nil
}

func (s *InMemoryCartStore) Update(_ context.Context, c *cart.AbandonedCart) error {
	return s.store.Update(c.ID, c)
}

func (s *InMemoryCartStore) Count() int {
	return s.store.Count()
}

func (s *InMemoryCartStore) Clear() {
	s.store.Clear()
}
