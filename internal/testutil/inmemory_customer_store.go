package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/domain/customer"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryCustomerStore implements customer.Repository for tests
type InMemoryCustomerStore struct {
	store *InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		store: NewInMemoryStore[*customer.Customer](),
	}
}

func notFoundCustomer() error {
	return ierr.NewError("customer not found").
		WithHint("No customer matches the given identifier").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryCustomerStore) Create(_ context.Context, c *customer.Customer) error {
	return s.store.Create(c.ID, c)
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != types.GetOrganizationID(ctx) {
		return nil, notFoundCustomer()
	}
	return c, nil
}

func (s *InMemoryCustomerStore) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	normalized := customer.NormalizeEmail(email)
	found, ok := s.store.Find(func(c *customer.Customer) bool {
		return c.OrganizationID == types.GetOrganizationID(ctx) && c.Email == normalized
	})
	if !ok {
		return nil, notFoundCustomer()
	}
	return found, nil
}

func (s *InMemoryCustomerStore) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	found, ok := s.store.Find(func(c *customer.Customer) bool {
		return c.OrganizationID == types.GetOrganizationID(ctx) && c.Phone == phone
	})
	if !ok {
		return nil, notFoundCustomer()
	}
	return found, nil
}

func (s *InMemoryCustomerStore) GetByShopifyID(ctx context.Context, shopifyID string) (*customer.Customer, error) {
	found, ok := s.store.Find(func(c *customer.Customer) bool {
		return c.OrganizationID == types.GetOrganizationID(ctx) && c.ShopifyID == shopifyID
	})
	if !ok {
		return nil, notFoundCustomer()
	}
	return found, nil
}

func (s *InMemoryCustomerStore) Count() int {
	return s.store.Count()
}

func (s *InMemoryCustomerStore) Update(_ context.Context, c *customer.Customer) error {
	return s.store.Update(c.ID, c)
}

func (s *InMemoryCustomerStore) Clear() {
	s.store.Clear()
}
