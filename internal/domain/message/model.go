package message

import (
	"time"

	"github.com/loopreach/loopreach/internal/types"
)

// Message is one outbound send or inbound reply on a messaging channel.
// Outbound rows are the source of truth for the rate-limit window: the
// admission check counts them, it never writes them.
type Message struct {
	ID string `db:"id" json:"id"`

	// CampaignID is empty for transactional or automation sends
	CampaignID string `db:"campaign_id" json:"campaign_id"`

	CustomerID string `db:"customer_id" json:"customer_id"`

	Channel   types.MessageChannel   `db:"channel" json:"channel"`
	Direction types.MessageDirection `db:"direction" json:"direction"`
	Status    types.MessageStatus    `db:"status" json:"status"`

	// ProviderSID is the carrier's id for the message, used to correlate
	// delivery receipts
	ProviderSID string `db:"provider_sid" json:"provider_sid"`

	Body string `db:"body" json:"body"`

	// ErrorCode is the carrier failure code on failed/undelivered messages
	ErrorCode string `db:"error_code" json:"error_code"`

	SentAt      time.Time  `db:"sent_at" json:"sent_at"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`

	types.BaseModel
}

func (m *Message) TableName() string {
	return "messages"
}

// SendWindow is the per-customer aggregate the rate limiter reads
type SendWindow struct {
	CustomerID string     `db:"customer_id" json:"customer_id"`
	Count      int64      `db:"count" json:"count"`
	LastSentAt *time.Time `db:"last_sent_at" json:"last_sent_at,omitempty"`
}
