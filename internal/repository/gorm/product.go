package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/product"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewProductRepository(db postgres.IClient, logger *logger.Logger) product.Repository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or refreshes a product keyed on (shopify_id, organization_id).
// Archived products have shopify_id cleared, so they never collide with a
// re-created product that reuses the provider ID.
func (r *productRepository) Upsert(ctx context.Context, p *product.Product) error {
	err := r.db.Querier(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shopify_id"}, {Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"description",
				"price",
				"currency",
				"image_url",
				"inventory",
				"status",
				"updated_at",
			}),
		}).
		Create(p).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert product").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := r.db.Querier(ctx).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		First(&p).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("product not found").
				WithHintf("Product with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get product").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *productRepository) GetByShopifyID(ctx context.Context, shopifyID string) (*product.Product, error) {
	var p product.Product
	err := r.db.Querier(ctx).
		Where("shopify_id = ? AND organization_id = ?", shopifyID, types.GetOrganizationID(ctx)).
		First(&p).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("product not found").
				WithHintf("No product matches the provider ID %s", shopifyID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get product by provider ID").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	p.UpdatedAt = time.Now().UTC()
	err := r.db.Querier(ctx).
		Where("organization_id = ?", types.GetOrganizationID(ctx)).
		Save(p).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update product").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
