package message

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/types"
)

// Repository defines the interface for message data access
type Repository interface {
	Create(ctx context.Context, message *Message) error
	Get(ctx context.Context, id string) (*Message, error)
	GetByProviderSID(ctx context.Context, providerSID string) (*Message, error)
	Update(ctx context.Context, message *Message) error

	// GetLatestOutbound returns the most recent outbound send to a customer on
	// a channel since the given instant, used to attribute inbound replies
	GetLatestOutbound(ctx context.Context, customerID string, channel types.MessageChannel, since time.Time) (*Message, error)

	// GetSendWindow returns the outbound send aggregate for one customer on a
	// channel: the last send at or after since, and the count of sends at or
	// after countSince. since must not be after countSince; the wider bound
	// exists so the cooldown can see a send from before the counting window.
	GetSendWindow(ctx context.Context, customerID string, channel types.MessageChannel, since, countSince time.Time) (*SendWindow, error)

	// GetSendWindows is the batch variant: one grouped aggregate query for
	// campaign-scale fan-out instead of a query per customer
	GetSendWindows(ctx context.Context, customerIDs []string, channel types.MessageChannel, since, countSince time.Time) (map[string]*SendWindow, error)

	// CountByStatusForCampaign recounts all messages of a campaign grouped by
	// status; campaign counters are recomputed from this, never incremented
	CountByStatusForCampaign(ctx context.Context, campaignID string) (map[types.MessageStatus]int64, error)
}
