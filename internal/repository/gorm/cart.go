package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/cart"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCartRepository(db postgres.IClient, logger *logger.Logger) cart.Repository {
	return &cartRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or refreshes an abandoned cart keyed on
// (checkout_id, organization_id). Checkout update payloads arrive many times
// per session; each one refreshes the snapshot and pushes the reminder out.
func (r *cartRepository) Upsert(ctx context.Context, c *cart.AbandonedCart) error {
	err := r.db.Querier(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "checkout_id"}, {Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id",
				"email",
				"phone",
				"total_price",
				"currency",
				"recovery_url",
				"abandoned_at",
				"remind_at",
				"updated_at",
			}),
		}).
		Create(c).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert abandoned cart").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *cartRepository) Get(ctx context.Context, id string) (*cart.AbandonedCart, error) {
	var c cart.AbandonedCart
	err := r.db.Querier(ctx).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("abandoned cart not found").
				WithHintf("Abandoned cart with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get abandoned cart").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *cartRepository) GetByCheckoutID(ctx context.Context, checkoutID string) (*cart.AbandonedCart, error) {
	var c cart.AbandonedCart
	err := r.db.Querier(ctx).
		Where("checkout_id = ? AND organization_id = ?", checkoutID, types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("abandoned cart not found").
				WithHintf("No abandoned cart matches checkout %s", checkoutID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get abandoned cart by checkout ID").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *cartRepository) Update(ctx context.Context, c *cart.AbandonedCart) error {
	c.UpdatedAt = time.Now().UTC()
	err := r.db.Querier(ctx).
		Where("organization_id = ?", types.GetOrganizationID(ctx)).
		Save(c).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update abandoned cart").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
