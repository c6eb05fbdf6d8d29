package service

import (
	"context"
	"strings"
	"time"

	"github.com/loopreach/loopreach/internal/domain/webhooklog"
	"github.com/loopreach/loopreach/internal/types"
)

// syntheticIDPrefix marks log ids that were never persisted. Follow-up calls
// on a synthetic id are no-ops.
const syntheticIDPrefix = "local_"

// ReceivedLog is the handle LogReceived returns to the endpoint wrapper
type ReceivedLog struct {
	ID        string
	StartTime time.Time
}

// WebhookStats is the operator-facing health summary over a trailing window
type WebhookStats struct {
	WindowDays     int                              `json:"window_days"`
	Total          int64                            `json:"total"`
	StatusCounts   map[types.WebhookLogStatus]int64 `json:"status_counts"`
	TopicCounts    []webhooklog.TopicCount          `json:"topic_counts"`
	SuccessRate    float64                          `json:"success_rate"`
	Health         types.WebhookHealthStatus        `json:"health"`
	RecentFailures []*webhooklog.WebhookLogEntry    `json:"recent_failures"`
}

// WebhookLogService records the lifecycle of inbound deliveries. Every write
// is best-effort: a store outage degrades audit fidelity, never webhook
// processing. Only GetStats and Cleanup surface errors.
type WebhookLogService interface {
	LogReceived(ctx context.Context, platform types.WebhookPlatform, topic, shopDomain, externalID string) *ReceivedLog
	LogProcessing(ctx context.Context, id string, organizationID string)
	LogSuccess(ctx context.Context, rl *ReceivedLog, organizationID string)
	LogFailure(ctx context.Context, rl *ReceivedLog, organizationID string, procErr error, errorCode string)
	GetStats(ctx context.Context, organizationID string, windowDays int) (*WebhookStats, error)
	Cleanup(ctx context.Context) (int64, error)
}

type webhookLogService struct {
	ServiceParams
}

func NewWebhookLogService(params ServiceParams) WebhookLogService {
	return &webhookLogService{
		ServiceParams: params,
	}
}

// LogReceived creates the RECEIVED row. On store failure it hands back a
// synthetic id so the caller proceeds without a persisted trail.
func (s *webhookLogService) LogReceived(ctx context.Context, platform types.WebhookPlatform, topic, shopDomain, externalID string) *ReceivedLog {
	now := time.Now().UTC()
	entry := &webhooklog.WebhookLogEntry{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_LOG),
		Platform:   platform,
		Topic:      topic,
		ShopDomain: shopDomain,
		ExternalID: externalID,
		Status:     types.WebhookLogStatusReceived,
		ReceivedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.WebhookLogRepo.Create(ctx, entry); err != nil {
		s.Logger.Warnw("webhook log create failed, continuing with synthetic id",
			"platform", platform,
			"topic", topic,
			"error", err)
		return &ReceivedLog{
			ID:        syntheticIDPrefix + types.GenerateUUID(),
			StartTime: now,
		}
	}
	return &ReceivedLog{ID: entry.ID, StartTime: now}
}

func (s *webhookLogService) LogProcessing(ctx context.Context, id string, organizationID string) {
	s.transition(ctx, id, organizationID, types.WebhookLogStatusProcessing, time.Time{}, nil, "")
}

func (s *webhookLogService) LogSuccess(ctx context.Context, rl *ReceivedLog, organizationID string) {
	s.transition(ctx, rl.ID, organizationID, types.WebhookLogStatusSuccess, rl.StartTime, nil, "")
}

func (s *webhookLogService) LogFailure(ctx context.Context, rl *ReceivedLog, organizationID string, procErr error, errorCode string) {
	s.transition(ctx, rl.ID, organizationID, types.WebhookLogStatusFailed, rl.StartTime, procErr, errorCode)
}

// transition moves an entry forward in the state machine, best-effort. All
// invalid transitions are dropped rather than reported; the state machine is
// monotonic and terminal states never reopen.
func (s *webhookLogService) transition(ctx context.Context, id, organizationID string, next types.WebhookLogStatus, startTime time.Time, procErr error, errorCode string) {
	if strings.HasPrefix(id, syntheticIDPrefix) {
		return
	}

	entry, err := s.WebhookLogRepo.Get(ctx, id)
	if err != nil {
		s.Logger.Warnw("webhook log fetch failed, skipping transition",
			"id", id, "next", next, "error", err)
		return
	}

	if !entry.Status.CanTransitionTo(next) {
		s.Logger.Warnw("invalid webhook log transition, skipping",
			"id", id, "from", entry.Status, "to", next)
		return
	}

	entry.Status = next
	if organizationID != "" {
		entry.OrganizationID = organizationID
	}

	if next.IsTerminal() {
		now := time.Now().UTC()
		entry.ProcessedAt = &now
		entry.DurationMs = now.Sub(startTime).Milliseconds()
		if entry.DurationMs < 0 {
			entry.DurationMs = 0
		}
	}
	if next == types.WebhookLogStatusFailed && procErr != nil {
		entry.ErrorMessage = truncate(procErr.Error(), s.Config.Webhook.MaxErrorMessageLen)
		entry.ErrorCode = errorCode
	}

	if err := s.WebhookLogRepo.Update(ctx, entry); err != nil {
		s.Logger.Warnw("webhook log update failed",
			"id", id, "next", next, "error", err)
	}
}

func (s *webhookLogService) GetStats(ctx context.Context, organizationID string, windowDays int) (*WebhookStats, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	statusCounts, err := s.WebhookLogRepo.CountByStatus(ctx, organizationID, since)
	if err != nil {
		return nil, err
	}
	topicCounts, err := s.WebhookLogRepo.CountByTopic(ctx, organizationID, since)
	if err != nil {
		return nil, err
	}
	failures, err := s.WebhookLogRepo.ListRecentFailures(ctx, organizationID, 10)
	if err != nil {
		return nil, err
	}

	stats := &WebhookStats{
		WindowDays:     windowDays,
		StatusCounts:   make(map[types.WebhookLogStatus]int64, len(statusCounts)),
		TopicCounts:    topicCounts,
		RecentFailures: failures,
	}
	for _, sc := range statusCounts {
		stats.StatusCounts[sc.Status] = sc.Count
		stats.Total += sc.Count
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.StatusCounts[types.WebhookLogStatusSuccess]) / float64(stats.Total) * 100
	} else {
		stats.SuccessRate = 100
	}
	stats.Health = types.ClassifyWebhookHealth(stats.SuccessRate)
	return stats, nil
}

// Cleanup removes terminal entries past retention. SUCCESS rows expire first;
// FAILED rows are kept longer because they are the primary debugging artifact.
func (s *webhookLogService) Cleanup(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	deleted, err := s.WebhookLogRepo.DeleteWithStatusBefore(ctx,
		types.WebhookLogStatusSuccess,
		now.AddDate(0, 0, -s.Config.Webhook.SuccessRetentionDays))
	if err != nil {
		return 0, err
	}

	failedDeleted, err := s.WebhookLogRepo.DeleteWithStatusBefore(ctx,
		types.WebhookLogStatusFailed,
		now.AddDate(0, 0, -s.Config.Webhook.FailedRetentionDays))
	if err != nil {
		return deleted, err
	}

	total := deleted + failedDeleted
	if total > 0 {
		s.Logger.Infow("webhook log cleanup complete",
			"success_deleted", deleted,
			"failed_deleted", failedDeleted)
	}
	return total, nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
