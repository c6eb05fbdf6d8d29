package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/order"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewOrderRepository(db postgres.IClient, logger *logger.Logger) order.Repository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or refreshes an order keyed on (shopify_id, organization_id).
// The conflict target is the table's unique index, which makes redelivered
// create/update payloads converge on a single row without a read first.
func (r *orderRepository) Upsert(ctx context.Context, o *order.Order) error {
	err := r.db.Querier(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shopify_id"}, {Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id",
				"order_number",
				"total_price",
				"currency",
				"payment_status",
				"fulfillment_status",
				"placed_at",
				"status",
				"updated_at",
			}),
		}).
		Create(o).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.db.Querier(ctx).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		First(&o).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("order not found").
				WithHintf("Order with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get order").
			Mark(ierr.ErrDatabase)
	}
	return &o, nil
}

func (r *orderRepository) GetByShopifyID(ctx context.Context, shopifyID string) (*order.Order, error) {
	var o order.Order
	err := r.db.Querier(ctx).
		Where("shopify_id = ? AND organization_id = ?", shopifyID, types.GetOrganizationID(ctx)).
		First(&o).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("order not found").
				WithHintf("No order matches the provider ID %s", shopifyID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get order by provider ID").
			Mark(ierr.ErrDatabase)
	}
	return &o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	o.UpdatedAt = time.Now().UTC()
	err := r.db.Querier(ctx).
		Where("organization_id = ?", types.GetOrganizationID(ctx)).
		Save(o).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
