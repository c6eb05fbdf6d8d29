package gorm

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/domain/message"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
	gormdb "gorm.io/gorm"
)

type messageRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewMessageRepository(db postgres.IClient, logger *logger.Logger) message.Repository {
	return &messageRepository{
		db:     db,
		logger: logger,
	}
}

func (r *messageRepository) Create(ctx context.Context, m *message.Message) error {
	if err := r.db.Querier(ctx).Create(m).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create message").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *messageRepository) Get(ctx context.Context, id string) (*message.Message, error) {
	var m message.Message
	err := r.db.Querier(ctx).
		Where("id = ? AND organization_id = ?", id, types.GetOrganizationID(ctx)).
		First(&m).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("message not found").
				WithHintf("Message with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get message").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func (r *messageRepository) GetByProviderSID(ctx context.Context, providerSID string) (*message.Message, error) {
	var m message.Message
	err := r.db.Querier(ctx).
		Where("provider_sid = ? AND organization_id = ?", providerSID, types.GetOrganizationID(ctx)).
		First(&m).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("message not found").
				WithHintf("No message matches the provider SID %s", providerSID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get message by provider SID").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func (r *messageRepository) Update(ctx context.Context, m *message.Message) error {
	m.UpdatedAt = time.Now().UTC()
	err := r.db.Querier(ctx).
		Where("organization_id = ?", types.GetOrganizationID(ctx)).
		Save(m).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update message").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *messageRepository) GetLatestOutbound(ctx context.Context, customerID string, channel types.MessageChannel, since time.Time) (*message.Message, error) {
	var m message.Message
	err := r.db.Querier(ctx).
		Where("organization_id = ? AND customer_id = ? AND channel = ? AND direction = ? AND sent_at >= ?",
			types.GetOrganizationID(ctx), customerID, channel, types.MessageDirectionOutbound, since).
		Order("sent_at DESC").
		First(&m).Error
	if err != nil {
		if err == gormdb.ErrRecordNotFound {
			return nil, ierr.NewError("no outbound message in window").
				WithHint("No recent outbound message matches the customer and channel").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get latest outbound message").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func (r *messageRepository) GetSendWindow(ctx context.Context, customerID string, channel types.MessageChannel, since, countSince time.Time) (*message.SendWindow, error) {
	windows, err := r.GetSendWindows(ctx, []string{customerID}, channel, since, countSince)
	if err != nil {
		return nil, err
	}
	if w, ok := windows[customerID]; ok {
		return w, nil
	}
	return &message.SendWindow{CustomerID: customerID}, nil
}

// GetSendWindows aggregates outbound sends per customer in one grouped query.
// The row scan spans since (cooldown horizon) while the count only covers
// rows from countSince (start of the current day). Customers with no sends in
// the window are absent from the result; callers treat absence as zero.
func (r *messageRepository) GetSendWindows(ctx context.Context, customerIDs []string, channel types.MessageChannel, since, countSince time.Time) (map[string]*message.SendWindow, error) {
	if len(customerIDs) == 0 {
		return map[string]*message.SendWindow{}, nil
	}

	var rows []message.SendWindow
	err := r.db.Querier(ctx).
		Model(&message.Message{}).
		Select("customer_id, COUNT(*) FILTER (WHERE sent_at >= ?) AS count, MAX(sent_at) AS last_sent_at", countSince).
		Where("organization_id = ? AND customer_id IN ? AND channel = ? AND direction = ? AND sent_at >= ?",
			types.GetOrganizationID(ctx), customerIDs, channel, types.MessageDirectionOutbound, since).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to aggregate send windows").
			Mark(ierr.ErrDatabase)
	}

	windows := make(map[string]*message.SendWindow, len(rows))
	for i := range rows {
		windows[rows[i].CustomerID] = &rows[i]
	}
	return windows, nil
}

func (r *messageRepository) CountByStatusForCampaign(ctx context.Context, campaignID string) (map[types.MessageStatus]int64, error) {
	var rows []struct {
		Status types.MessageStatus `db:"status"`
		Count  int64               `db:"count"`
	}
	err := r.db.Querier(ctx).
		Model(&message.Message{}).
		Select("status, COUNT(*) AS count").
		Where("organization_id = ? AND campaign_id = ?", types.GetOrganizationID(ctx), campaignID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to count campaign messages by status").
			Mark(ierr.ErrDatabase)
	}

	counts := make(map[types.MessageStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
