package service

import (
	"context"
	"time"

	"github.com/loopreach/loopreach/internal/types"
)

// RateLimitResult is the admission decision for one customer and channel
type RateLimitResult struct {
	Allowed                bool       `json:"allowed"`
	MaxPerDay              int        `json:"max_per_day"`
	MessagesSentToday      int64      `json:"messages_sent_today"`
	LastMessageAt          *time.Time `json:"last_message_at,omitempty"`
	RemainingCooldownHours float64    `json:"remaining_cooldown_hours"`
}

// RateLimitService gates outbound sends per customer and channel. The check
// is read-only admission control: it never records a send, and two
// concurrent checks can both admit. That race is accepted; the cap is a
// business control, not a security boundary.
type RateLimitService interface {
	Check(ctx context.Context, customerID string, channel types.MessageChannel) (*RateLimitResult, error)

	// CheckBatch answers for many customers with a single aggregate query,
	// for campaign-scale fan-out
	CheckBatch(ctx context.Context, customerIDs []string, channel types.MessageChannel) (map[string]*RateLimitResult, error)
}

type rateLimitService struct {
	ServiceParams
}

func NewRateLimitService(params ServiceParams) RateLimitService {
	return &rateLimitService{
		ServiceParams: params,
	}
}

// Check counts outbound sends since local midnight and enforces the cooldown
// against the last send, which may predate midnight: the daily counter
// resetting does not shorten the cooldown. Store errors fail open: a broken
// counter must not silence legitimate sends.
func (s *rateLimitService) Check(ctx context.Context, customerID string, channel types.MessageChannel) (*RateLimitResult, error) {
	since, countSince := s.windowBounds()
	window, err := s.MessageRepo.GetSendWindow(ctx, customerID, channel, since, countSince)
	if err != nil {
		s.Logger.Errorw("rate limit count failed, failing open",
			"customer_id", customerID,
			"channel", channel,
			"error", err)
		return s.allowedResult(0, nil), nil
	}
	return s.evaluate(window.Count, window.LastSentAt), nil
}

func (s *rateLimitService) CheckBatch(ctx context.Context, customerIDs []string, channel types.MessageChannel) (map[string]*RateLimitResult, error) {
	results := make(map[string]*RateLimitResult, len(customerIDs))

	since, countSince := s.windowBounds()
	windows, err := s.MessageRepo.GetSendWindows(ctx, customerIDs, channel, since, countSince)
	if err != nil {
		s.Logger.Errorw("batch rate limit count failed, failing open",
			"customers", len(customerIDs),
			"channel", channel,
			"error", err)
		for _, id := range customerIDs {
			results[id] = s.allowedResult(0, nil)
		}
		return results, nil
	}

	for _, id := range customerIDs {
		if w, ok := windows[id]; ok {
			results[id] = s.evaluate(w.Count, w.LastSentAt)
		} else {
			results[id] = s.allowedResult(0, nil)
		}
	}
	return results, nil
}

func (s *rateLimitService) evaluate(sentToday int64, lastSentAt *time.Time) *RateLimitResult {
	if sentToday >= int64(s.Config.RateLimit.MaxPerDay) {
		return s.deniedResult(sentToday, lastSentAt)
	}

	// The daily counter resets at midnight but the cooldown does not: a send
	// late yesterday still blocks an early send today
	if lastSentAt != nil && time.Since(*lastSentAt).Hours() < float64(s.Config.RateLimit.CooldownHours) {
		return s.deniedResult(sentToday, lastSentAt)
	}

	return s.allowedResult(sentToday, lastSentAt)
}

func (s *rateLimitService) deniedResult(sentToday int64, lastSentAt *time.Time) *RateLimitResult {
	result := &RateLimitResult{
		Allowed:           false,
		MaxPerDay:         s.Config.RateLimit.MaxPerDay,
		MessagesSentToday: sentToday,
		LastMessageAt:     lastSentAt,
	}
	if lastSentAt != nil {
		remaining := float64(s.Config.RateLimit.CooldownHours) - time.Since(*lastSentAt).Hours()
		if remaining > 0 {
			result.RemainingCooldownHours = remaining
		}
	}
	return result
}

func (s *rateLimitService) allowedResult(sentToday int64, lastSentAt *time.Time) *RateLimitResult {
	return &RateLimitResult{
		Allowed:           true,
		MaxPerDay:         s.Config.RateLimit.MaxPerDay,
		MessagesSentToday: sentToday,
		LastMessageAt:     lastSentAt,
	}
}

// windowBounds returns the aggregate query bounds: sends are counted from
// local midnight, but the scan reaches back far enough that a send within the
// cooldown horizon is still visible as lastSentAt.
func (s *rateLimitService) windowBounds() (since, countSince time.Time) {
	countSince = startOfToday()
	since = time.Now().Add(-time.Duration(s.Config.RateLimit.CooldownHours) * time.Hour)
	if countSince.Before(since) {
		since = countSince
	}
	return since, countSince
}

// startOfToday is local midnight; the daily counter resets on the server's
// calendar day.
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
