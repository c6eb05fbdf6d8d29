package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/customer"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
)

type customerRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCustomerRepository(db postgres.IClient, logger *logger.Logger) customer.Repository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if err := r.db.Querier(ctx).Create(c).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create customer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.Querier(ctx).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("customer not found").
				WithHintf("Customer with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.Querier(ctx).
		Where("email = ? AND organization_id = ?", customer.NormalizeEmail(email), types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("customer not found").
				WithHint("No customer matches the given email").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer by email").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.Querier(ctx).
		Where("phone = ? AND organization_id = ?", phone, types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("customer not found").
				WithHint("No customer matches the given phone number").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer by phone").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) GetByShopifyID(ctx context.Context, shopifyID string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.Querier(ctx).
		Where("shopify_id = ? AND organization_id = ?", shopifyID, types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("customer not found").
				WithHintf("No customer matches the provider ID %s", shopifyID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer by provider ID").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	err := r.db.Querier(ctx).
		Where("organization_id = ?", types.GetOrganizationID(ctx)).
		Save(c).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update customer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
