package campaign

import (
	"github.com/loopreach/loopreach/internal/types"
)

// Campaign carries the aggregate delivery counters shown on the campaign
// dashboard. Counters are always recomputed from the message table, so a
// redelivered status callback cannot skew them.
type Campaign struct {
	ID string `db:"id" json:"id"`

	Name    string               `db:"name" json:"name"`
	Channel types.MessageChannel `db:"channel" json:"channel"`

	Stats Stats `db:"stats" json:"stats" gorm:"embedded"`

	types.BaseModel
}

// Stats are the denormalized per-campaign message counts
type Stats struct {
	SentCount        int64 `db:"sent_count" json:"sent_count"`
	DeliveredCount   int64 `db:"delivered_count" json:"delivered_count"`
	FailedCount      int64 `db:"failed_count" json:"failed_count"`
	UndeliveredCount int64 `db:"undelivered_count" json:"undelivered_count"`
	RepliedCount     int64 `db:"replied_count" json:"replied_count"`
	OptOutCount      int64 `db:"opt_out_count" json:"opt_out_count"`
}

func (c *Campaign) TableName() string {
	return "campaigns"
}

// StatsFromCounts folds a status recount into the denormalized counters
func StatsFromCounts(counts map[types.MessageStatus]int64) Stats {
	return Stats{
		SentCount:        counts[types.MessageStatusSent] + counts[types.MessageStatusDelivered],
		DeliveredCount:   counts[types.MessageStatusDelivered],
		FailedCount:      counts[types.MessageStatusFailed],
		UndeliveredCount: counts[types.MessageStatusUndelivered],
		RepliedCount:     counts[types.MessageStatusReplied],
		OptOutCount:      counts[types.MessageStatusOptedOut],
	}
}
