package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/loopreach/loopreach/internal/domain/message"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryMessageStore implements message.Repository for tests. WindowErr
// injects aggregate-query failures to exercise the rate limiter's fail-open
// path.
type InMemoryMessageStore struct {
	store *InMemoryStore[*message.Message]

	WindowErr error
}

func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		store: NewInMemoryStore[*message.Message](),
	}
}

func notFoundMessage() error {
	return ierr.NewError("message not found").
		WithHint("No message matches the given identifier").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryMessageStore) Create(_ context.Context, m *message.Message) error {
	return s.store.Create(m.ID, m)
}

func (s *InMemoryMessageStore) Get(ctx context.Context, id string) (*message.Message, error) {
	m, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if m.OrganizationID != types.GetOrganizationID(ctx) {
		return nil, notFoundMessage()
	}
	return m, nil
}

func (s *InMemoryMessageStore) GetByProviderSID(ctx context.Context, providerSID string) (*message.Message, error) {
	found, ok := s.store.Find(func(m *message.Message) bool {
		return m.OrganizationID == types.GetOrganizationID(ctx) && m.ProviderSID == providerSID
	})
	if !ok {
		return nil, notFoundMessage()
	}
	return found, nil
}

func (s *InMemoryMessageStore) Update(_ context.Context, m *message.Message) error {
	return s.store.Update(m.ID, m)
}

func (s *InMemoryMessageStore) GetLatestOutbound(ctx context.Context, customerID string, channel types.MessageChannel, since time.Time) (*message.Message, error) {
	matches := s.store.List(func(m *message.Message) bool {
		return m.OrganizationID == types.GetOrganizationID(ctx) &&
			m.CustomerID == customerID &&
			m.Channel == channel &&
			m.Direction == types.MessageDirectionOutbound &&
			!m.SentAt.Before(since)
	})
	if len(matches) == 0 {
		return nil, notFoundMessage()
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SentAt.After(matches[j].SentAt)
	})
	return matches[0], nil
}

func (s *InMemoryMessageStore) GetSendWindow(ctx context.Context, customerID string, channel types.MessageChannel, since, countSince time.Time) (*message.SendWindow, error) {
	windows, err := s.GetSendWindows(ctx, []string{customerID}, channel, since, countSince)
	if err != nil {
		return nil, err
	}
	if w, ok := windows[customerID]; ok {
		return w, nil
	}
	return &message.SendWindow{CustomerID: customerID}, nil
}

func (s *InMemoryMessageStore) GetSendWindows(ctx context.Context, customerIDs []string, channel types.MessageChannel, since, countSince time.Time) (map[string]*message.SendWindow, error) {
	if s.WindowErr != nil {
		return nil, s.WindowErr
	}

	wanted := make(map[string]bool, len(customerIDs))
	for _, id := range customerIDs {
		wanted[id] = true
	}

	windows := make(map[string]*message.SendWindow)
	for _, m := range s.store.List(func(m *message.Message) bool {
		return m.OrganizationID == types.GetOrganizationID(ctx) &&
			wanted[m.CustomerID] &&
			m.Channel == channel &&
			m.Direction == types.MessageDirectionOutbound &&
			!m.SentAt.Before(since)
	}) {
		w, ok := windows[m.CustomerID]
		if !ok {
			w = &message.SendWindow{CustomerID: m.CustomerID}
			windows[m.CustomerID] = w
		}
		// The count only covers the current day; the last send spans the
		// whole window so the cooldown can see it
		if !m.SentAt.Before(countSince) {
			w.Count++
		}
		if w.LastSentAt == nil || m.SentAt.After(*w.LastSentAt) {
			sentAt := m.SentAt
			w.LastSentAt = &sentAt
		}
	}
	return windows, nil
}

func (s *InMemoryMessageStore) CountByStatusForCampaign(ctx context.Context, campaignID string) (map[types.MessageStatus]int64, error) {
	counts := make(map[types.MessageStatus]int64)
	for _, m := range s.store.List(func(m *message.Message) bool {
		return m.OrganizationID == types.GetOrganizationID(ctx) && m.CampaignID == campaignID
	}) {
		counts[m.Status]++
	}
	return counts, nil
}

func (s *InMemoryMessageStore) Clear() {
	s.store.Clear()
	s.WindowErr = nil
}
