package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/webhooklog"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
)

type webhookLogRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewWebhookLogRepository(db postgres.IClient, logger *logger.Logger) webhooklog.Repository {
	return &webhookLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *webhookLogRepository) Create(ctx context.Context, entry *webhooklog.WebhookLogEntry) error {
	if err := r.db.Querier(ctx).Create(entry).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create webhook log entry").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *webhookLogRepository) Get(ctx context.Context, id string) (*webhooklog.WebhookLogEntry, error) {
	var entry webhooklog.WebhookLogEntry
	err := r.db.Querier(ctx).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("webhook log entry not found").
				WithHintf("Webhook log entry with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get webhook log entry").
			Mark(ierr.ErrDatabase)
	}
	return &entry, nil
}

func (r *webhookLogRepository) Update(ctx context.Context, entry *webhooklog.WebhookLogEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	if err := r.db.Querier(ctx).Save(entry).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update webhook log entry").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *webhookLogRepository) CountByStatus(ctx context.Context, organizationID string, since time.Time) ([]webhooklog.StatusCount, error) {
	var counts []webhooklog.StatusCount
	err := r.db.Querier(ctx).
		Model(&webhooklog.WebhookLogEntry{}).
		Select("status, COUNT(*) AS count").
		Where("organization_id = ? AND received_at >= ?", organizationID, since).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to count webhook logs by status").
			Mark(ierr.ErrDatabase)
	}
	return counts, nil
}

func (r *webhookLogRepository) CountByTopic(ctx context.Context, organizationID string, since time.Time) ([]webhooklog.TopicCount, error) {
	var counts []webhooklog.TopicCount
	err := r.db.Querier(ctx).
		Model(&webhooklog.WebhookLogEntry{}).
		Select("platform, topic, COUNT(*) AS count").
		Where("organization_id = ? AND received_at >= ?", organizationID, since).
		Group("platform, topic").
		Scan(&counts).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to count webhook logs by topic").
			Mark(ierr.ErrDatabase)
	}
	return counts, nil
}

func (r *webhookLogRepository) ListRecentFailures(ctx context.Context, organizationID string, limit int) ([]*webhooklog.WebhookLogEntry, error) {
	var entries []*webhooklog.WebhookLogEntry
	err := r.db.Querier(ctx).
		Where("organization_id = ? AND status = ?", organizationID, types.WebhookLogStatusFailed).
		Order("received_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list recent webhook failures").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

// DeleteWithStatusBefore is the retention sweep. It runs across all
// organizations on purpose; retention is an operator policy, not tenant data.
func (r *webhookLogRepository) DeleteWithStatusBefore(ctx context.Context, status types.WebhookLogStatus, before time.Time) (int64, error) {
	res := r.db.Querier(ctx).
		Where("status = ? AND received_at < ?", status, before).
		Delete(&webhooklog.WebhookLogEntry{})
	if res.Error != nil {
		return 0, ierr.WithError(res.Error).
			WithHint("Failed to delete expired webhook logs").
			Mark(ierr.ErrDatabase)
	}
	return res.RowsAffected, nil
}
