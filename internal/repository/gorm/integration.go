package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/cache"
	"github.com/loopreach/loopreach/internal/domain/integration"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
)

type integrationRepository struct {
	db     postgres.IClient
	logger *logger.Logger
	cache  cache.Cache
}

func NewIntegrationRepository(db postgres.IClient, logger *logger.Logger, cache cache.Cache) integration.Repository {
	return &integrationRepository{
		db:     db,
		logger: logger,
		cache:  cache,
	}
}

func (r *integrationRepository) Create(ctx context.Context, i *integration.Integration) error {
	if err := r.db.Querier(ctx).Create(i).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create integration").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *integrationRepository) Get(ctx context.Context, id string) (*integration.Integration, error) {
	var i integration.Integration
	err := r.db.Querier(ctx).
		Where("id = ?", id).
		First(&i).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("integration not found").
				WithHintf("Integration with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get integration").
			Mark(ierr.ErrDatabase)
	}
	return &i, nil
}

// GetActiveByShopDomain looks up the unique active commerce integration for a
// shop domain. Runs before tenant context exists; cached because every
// inbound delivery resolves through it.
func (r *integrationRepository) GetActiveByShopDomain(ctx context.Context, shopDomain string) (*integration.Integration, error) {
	shopDomain = integration.NormalizeShopDomain(shopDomain)

	cacheKey := cache.GenerateKey(cache.PrefixIntegration, types.WebhookPlatformShopify, shopDomain)
	if cached, found := r.cache.Get(ctx, cacheKey); found {
		if i, ok := cached.(*integration.Integration); ok {
			return i, nil
		}
	}

	var i integration.Integration
	err := r.db.Querier(ctx).
		Where("platform = ? AND shop_domain = ? AND is_active = ?", types.WebhookPlatformShopify, shopDomain, true).
		First(&i).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("no active integration for shop domain").
				WithHintf("No connected store matches %s", shopDomain).
				Mark(ierr.ErrIntegrationNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up integration").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, cacheKey, &i, cache.DefaultExpiration)
	return &i, nil
}

func (r *integrationRepository) GetActiveByAccountSID(ctx context.Context, accountSID string) (*integration.Integration, error) {
	cacheKey := cache.GenerateKey(cache.PrefixIntegration, types.WebhookPlatformTwilio, accountSID)
	if cached, found := r.cache.Get(ctx, cacheKey); found {
		if i, ok := cached.(*integration.Integration); ok {
			return i, nil
		}
	}

	var i integration.Integration
	err := r.db.Querier(ctx).
		Where("platform = ? AND account_sid = ? AND is_active = ?", types.WebhookPlatformTwilio, accountSID, true).
		First(&i).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("no active integration for account").
				WithHint("No connected messaging account matches the given SID").
				Mark(ierr.ErrIntegrationNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up integration").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, cacheKey, &i, cache.DefaultExpiration)
	return &i, nil
}

func (r *integrationRepository) GetActiveForOrganization(ctx context.Context, platform types.WebhookPlatform) (*integration.Integration, error) {
	var i integration.Integration
	err := r.db.Querier(ctx).
		Where("organization_id = ? AND platform = ? AND is_active = ?", types.GetOrganizationID(ctx), platform, true).
		First(&i).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("no active integration for organization").
				WithHintf("Connect %s before using this feature", platform).
				Mark(ierr.ErrIntegrationNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up integration").
			Mark(ierr.ErrDatabase)
	}
	return &i, nil
}

func (r *integrationRepository) Update(ctx context.Context, i *integration.Integration) error {
	i.UpdatedAt = timeNowUTC()
	if err := r.db.Querier(ctx).Save(i).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update integration").
			Mark(ierr.ErrDatabase)
	}

	// Invalidate stale hint lookups
	r.cache.DeleteByPrefix(ctx, cache.PrefixIntegration)
	return nil
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
