package webhooklog

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/types"
)

// Repository defines the interface for webhook log data access
type Repository interface {
	Create(ctx context.Context, entry *WebhookLogEntry) error
	Get(ctx context.Context, id string) (*WebhookLogEntry, error)
	Update(ctx context.Context, entry *WebhookLogEntry) error
	CountByStatus(ctx context.Context, organizationID string, since time.Time) ([]StatusCount, error)
	CountByTopic(ctx context.Context, organizationID string, since time.Time) ([]TopicCount, error)
	ListRecentFailures(ctx context.Context, organizationID string, limit int) ([]*WebhookLogEntry, error)
	DeleteWithStatusBefore(ctx context.Context, status types.WebhookLogStatus, before time.Time) (int64, error)
}
