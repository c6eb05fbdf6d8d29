package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/loopreach/loopreach/internal/domain/webhooklog"
	"github.com/loopreach/loopreach/internal/types"
)

// InMemoryWebhookLogStore implements webhooklog.Repository for tests.
// CreateErr and UpdateErr inject store failures to exercise the best-effort
// logging paths.
type InMemoryWebhookLogStore struct {
	store *InMemoryStore[*webhooklog.WebhookLogEntry]

	CreateErr error
	UpdateErr error
}

func NewInMemoryWebhookLogStore() *InMemoryWebhookLogStore {
	return &InMemoryWebhookLogStore{
		store: NewInMemoryStore[*webhooklog.WebhookLogEntry](),
	}
}

func (s *InMemoryWebhookLogStore) Create(_ context.Context, entry *webhooklog.WebhookLogEntry) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	return s.store.Create(entry.ID, entry)
}

func (s *InMemoryWebhookLogStore) Get(_ context.Context, id string) (*webhooklog.WebhookLogEntry, error) {
	return s.store.Get(id)
}

func (s *InMemoryWebhookLogStore) Update(_ context.Context, entry *webhooklog.WebhookLogEntry) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	return s.store.Update(entry.ID, entry)
}

func (s *InMemoryWebhookLogStore) CountByStatus(_ context.Context, organizationID string, since time.Time) ([]webhooklog.StatusCount, error) {
	counts := make(map[types.WebhookLogStatus]int64)
	for _, e := range s.store.List(func(e *webhooklog.WebhookLogEntry) bool {
		return e.OrganizationID == organizationID && !e.ReceivedAt.Before(since)
	}) {
		counts[e.Status]++
	}

	out := make([]webhooklog.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, webhooklog.StatusCount{Status: status, Count: count})
	}
	return out, nil
}

func (s *InMemoryWebhookLogStore) CountByTopic(_ context.Context, organizationID string, since time.Time) ([]webhooklog.TopicCount, error) {
	type key struct {
		platform types.WebhookPlatform
		topic    string
	}
	counts := make(map[key]int64)
	for _, e := range s.store.List(func(e *webhooklog.WebhookLogEntry) bool {
		return e.OrganizationID == organizationID && !e.ReceivedAt.Before(since)
	}) {
		counts[key{e.Platform, e.Topic}]++
	}

	out := make([]webhooklog.TopicCount, 0, len(counts))
	for k, count := range counts {
		out = append(out, webhooklog.TopicCount{Platform: k.platform, Topic: k.topic, Count: count})
	}
	return out, nil
}

func (s *InMemoryWebhookLogStore) ListRecentFailures(_ context.Context, organizationID string, limit int) ([]*webhooklog.WebhookLogEntry, error) {
	failures := s.store.List(func(e *webhooklog.WebhookLogEntry) bool {
		return e.OrganizationID == organizationID && e.Status == types.WebhookLogStatusFailed
	})
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].ReceivedAt.After(failures[j].ReceivedAt)
	})
	if len(failures) > limit {
		failures = failures[:limit]
	}
	return failures, nil
}

func (s *InMemoryWebhookLogStore) DeleteWithStatusBefore(_ context.Context, status types.WebhookLogStatus, before time.Time) (int64, error) {
	expired := s.store.List(func(e *webhooklog.WebhookLogEntry) bool {
		return e.Status == status && e.ReceivedAt.Before(before)
	})
	for _, e := range expired {
		s.store.Delete(e.ID)
	}
	return int64(len(expired)), nil
}

// All returns every entry, for assertions on entries whose ids the caller
// never sees
func (s *InMemoryWebhookLogStore) All() []*webhooklog.WebhookLogEntry {
	return s.store.List(nil)
}

func (s *InMemoryWebhookLogStore) Clear() {
	s.store.Clear()
	s.CreateErr = nil
	s.UpdateErr = nil
}
