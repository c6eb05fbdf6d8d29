package webhooklog

import (
	"time"

	"github.com/loopreach/loopreach/internal/types"
)

// WebhookLogEntry records one inbound delivery attempt, independent of
// whether business processing succeeded. A logging failure must never abort
// processing; callers treat every write here as best-effort.
type WebhookLogEntry struct {
	ID string `db:"id" json:"id"`

	// Platform and Topic identify the provider event, e.g. SHOPIFY "orders/create"
	Platform types.WebhookPlatform `db:"platform" json:"platform"`
	Topic    string                `db:"topic" json:"topic"`

	// ShopDomain is the raw provider tenant hint, recorded before resolution
	ShopDomain string `db:"shop_domain" json:"shop_domain,omitempty"`

	// ExternalID is the provider's id for the underlying object. Used for
	// correlation when debugging redeliveries, not for uniqueness.
	ExternalID string `db:"external_id" json:"external_id,omitempty"`

	// OrganizationID is empty until the tenant hint resolves
	OrganizationID string `db:"organization_id" json:"organization_id,omitempty"`

	Status types.WebhookLogStatus `db:"status" json:"status"`

	ReceivedAt  time.Time  `db:"received_at" json:"received_at"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`

	// DurationMs is the wall time from receipt to terminal status
	DurationMs int64 `db:"duration_ms" json:"duration_ms"`

	// ErrorMessage and ErrorCode are set only on FAILED entries
	ErrorMessage string `db:"error_message" json:"error_message,omitempty"`
	ErrorCode    string `db:"error_code" json:"error_code,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (e *WebhookLogEntry) TableName() string {
	return "webhook_logs"
}

// StatusCount is an aggregate row of log entries grouped by status
type StatusCount struct {
	Status types.WebhookLogStatus `db:"status" json:"status"`
	Count  int64                  `db:"count" json:"count"`
}

// TopicCount is an aggregate row of log entries grouped by platform and topic
type TopicCount struct {
	Platform types.WebhookPlatform `db:"platform" json:"platform"`
	Topic    string                `db:"topic" json:"topic"`
	Count    int64                 `db:"count" json:"count"`
}
