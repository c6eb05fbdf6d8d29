package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/campaign"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
)

type campaignRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCampaignRepository(db postgres.IClient, logger *logger.Logger) campaign.Repository {
	return &campaignRepository{
		db:     db,
		logger: logger,
	}
}

func (r *campaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	if err := r.db.Querier(ctx).Create(c).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create campaign").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *campaignRepository) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := r.db.Querier(ctx).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		First(&c).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("campaign not found").
				WithHintf("Campaign with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get campaign").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *campaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	err := r.db.Querier(ctx).
		Where("organization_id = ?", types.GetOrganizationID(ctx)).
		Save(c).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update campaign").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// UpdateStats writes only the recomputed counters so a concurrent rename or
// status change on the campaign row is not clobbered.
func (r *campaignRepository) UpdateStats(ctx context.Context, id string, stats campaign.Stats) error {
	err := r.db.Querier(ctx).
		Model(&campaign.Campaign{}).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		Updates(map[string]interface{}{
			"sent_count":        stats.SentCount,
			"delivered_count":   stats.DeliveredCount,
			"failed_count":      stats.FailedCount,
			"undelivered_count": stats.UndeliveredCount,
			"replied_count":     stats.RepliedCount,
			"opt_out_count":     stats.OptOutCount,
			"updated_at":        time.Now().UTC(),
		}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update campaign stats").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
