package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/domain/webhooklog"
	"github.com/loopreach/loopreach/internal/testutil"
	"github.com/loopreach/loopreach/internal/types"
	"github.com/stretchr/testify/suite"
)

type WebhookLogServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookLogService
}

func TestWebhookLogService(t *testing.T) {
	suite.Run(t, new(WebhookLogServiceSuite))
}

func (s *WebhookLogServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewWebhookLogService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		WebhookLogRepo: s.GetStores().WebhookLog,
	})
}

func (s *WebhookLogServiceSuite) TestLogReceivedCreatesEntry() {
	rl := s.service.LogReceived(s.GetContext(), types.WebhookPlatformShopify, "orders/create", "test.example.com", "1001")
	s.NotEmpty(rl.ID)
	s.False(rl.StartTime.IsZero())

	entry, err := s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.NoError(err)
	s.Equal(types.WebhookLogStatusReceived, entry.Status)
	s.Equal("orders/create", entry.Topic)
	s.Equal("test.example.com", entry.ShopDomain)
	s.Equal("1001", entry.ExternalID)
	s.Empty(entry.OrganizationID)
}

func (s *WebhookLogServiceSuite) TestSyntheticIDOnStoreFailure() {
	s.GetStores().WebhookLog.CreateErr = ierr.NewError("store down").Mark(ierr.ErrDatabase)

	rl := s.service.LogReceived(s.GetContext(), types.WebhookPlatformShopify, "orders/create", "", "")
	s.NotEmpty(rl.ID)

	// Follow-up calls on the synthetic id must be silent no-ops
	s.GetStores().WebhookLog.CreateErr = nil
	s.service.LogProcessing(s.GetContext(), rl.ID, testutil.TestOrganizationID)
	s.service.LogSuccess(s.GetContext(), rl, testutil.TestOrganizationID)

	_, err := s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *WebhookLogServiceSuite) TestHappyPathTransitions() {
	rl := s.service.LogReceived(s.GetContext(), types.WebhookPlatformShopify, "orders/create", "test.example.com", "1001")

	s.service.LogProcessing(s.GetContext(), rl.ID, testutil.TestOrganizationID)
	entry, err := s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.NoError(err)
	s.Equal(types.WebhookLogStatusProcessing, entry.Status)
	s.Equal(testutil.TestOrganizationID, entry.OrganizationID)

	s.service.LogSuccess(s.GetContext(), rl, testutil.TestOrganizationID)
	entry, err = s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.NoError(err)
	s.Equal(types.WebhookLogStatusSuccess, entry.Status)
	s.NotNil(entry.ProcessedAt)
	s.GreaterOrEqual(entry.DurationMs, int64(0))
}

func (s *WebhookLogServiceSuite) TestTerminalStateNeverReopens() {
	rl := s.service.LogReceived(s.GetContext(), types.WebhookPlatformShopify, "orders/create", "", "")
	s.service.LogProcessing(s.GetContext(), rl.ID, testutil.TestOrganizationID)
	s.service.LogSuccess(s.GetContext(), rl, testutil.TestOrganizationID)

	s.service.LogFailure(s.GetContext(), rl, testutil.TestOrganizationID,
		ierr.NewError("late failure").Mark(ierr.ErrSystem), "500")

	entry, err := s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.NoError(err)
	s.Equal(types.WebhookLogStatusSuccess, entry.Status)
	s.Empty(entry.ErrorMessage)
}

func (s *WebhookLogServiceSuite) TestFailureDirectFromReceived() {
	// Signature and tenant failures skip PROCESSING entirely
	rl := s.service.LogReceived(s.GetContext(), types.WebhookPlatformShopify, "orders/create", "unknown.example.com", "")
	s.service.LogFailure(s.GetContext(), rl, "",
		ierr.NewError("no active integration").Mark(ierr.ErrIntegrationNotFound), "404")

	entry, err := s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.NoError(err)
	s.Equal(types.WebhookLogStatusFailed, entry.Status)
	s.Equal("404", entry.ErrorCode)
	s.NotNil(entry.ProcessedAt)
}

func (s *WebhookLogServiceSuite) TestFailureTruncatesErrorMessage() {
	rl := s.service.LogReceived(s.GetContext(), types.WebhookPlatformShopify, "orders/create", "", "")
	s.service.LogProcessing(s.GetContext(), rl.ID, testutil.TestOrganizationID)

	long := strings.Repeat("x", 2000)
	s.service.LogFailure(s.GetContext(), rl, testutil.TestOrganizationID,
		ierr.NewError(long).Mark(ierr.ErrSystem), "500")

	entry, err := s.GetStores().WebhookLog.Get(s.GetContext(), rl.ID)
	s.NoError(err)
	s.Equal(types.WebhookLogStatusFailed, entry.Status)
	s.LessOrEqual(len(entry.ErrorMessage), s.GetConfig().Webhook.MaxErrorMessageLen)
}

func (s *WebhookLogServiceSuite) seedEntries(total, succeeded int) {
	now := time.Now().UTC()
	for i := 0; i < total; i++ {
		status := types.WebhookLogStatusSuccess
		if i >= succeeded {
			status = types.WebhookLogStatusFailed
		}
		entry := &webhooklog.WebhookLogEntry{
			ID:             fmt.Sprintf("whlog_seed_%d", i),
			Platform:       types.WebhookPlatformShopify,
			Topic:          "orders/create",
			OrganizationID: testutil.TestOrganizationID,
			Status:         status,
			ReceivedAt:     now.Add(-time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.GetStores().WebhookLog.Create(s.GetContext(), entry))
	}
}

func (s *WebhookLogServiceSuite) TestStatsHealthClassification() {
	cases := []struct {
		succeeded int
		health    types.WebhookHealthStatus
	}{
		{96, types.WebhookHealthHealthy},
		{82, types.WebhookHealthDegraded},
		{70, types.WebhookHealthUnhealthy},
	}

	for _, tc := range cases {
		s.SetupTest()
		s.seedEntries(100, tc.succeeded)

		stats, err := s.service.GetStats(s.GetContext(), testutil.TestOrganizationID, 7)
		s.NoError(err)
		s.Equal(int64(100), stats.Total)
		s.InDelta(float64(tc.succeeded), stats.SuccessRate, 0.01)
		s.Equal(tc.health, stats.Health)
	}
}

func (s *WebhookLogServiceSuite) TestStatsIncludesRecentFailures() {
	s.seedEntries(10, 7)

	stats, err := s.service.GetStats(s.GetContext(), testutil.TestOrganizationID, 7)
	s.NoError(err)
	s.Len(stats.RecentFailures, 3)
	for _, f := range stats.RecentFailures {
		s.Equal(types.WebhookLogStatusFailed, f.Status)
	}
}

func (s *WebhookLogServiceSuite) TestCleanupRetention() {
	now := time.Now().UTC()
	entries := []*webhooklog.WebhookLogEntry{
		{ID: "whlog_old_success", Status: types.WebhookLogStatusSuccess, OrganizationID: testutil.TestOrganizationID, ReceivedAt: now.AddDate(0, 0, -31)},
		{ID: "whlog_new_success", Status: types.WebhookLogStatusSuccess, OrganizationID: testutil.TestOrganizationID, ReceivedAt: now.AddDate(0, 0, -5)},
		{ID: "whlog_old_failed", Status: types.WebhookLogStatusFailed, OrganizationID: testutil.TestOrganizationID, ReceivedAt: now.AddDate(0, 0, -31)},
		{ID: "whlog_ancient_failed", Status: types.WebhookLogStatusFailed, OrganizationID: testutil.TestOrganizationID, ReceivedAt: now.AddDate(0, 0, -91)},
	}
	for _, e := range entries {
		s.Require().NoError(s.GetStores().WebhookLog.Create(s.GetContext(), e))
	}

	deleted, err := s.service.Cleanup(s.GetContext())
	s.NoError(err)
	s.Equal(int64(2), deleted)

	// SUCCESS expires at 30 days; FAILED survives until 90
	_, err = s.GetStores().WebhookLog.Get(s.GetContext(), "whlog_old_success")
	s.True(ierr.IsNotFound(err))
	_, err = s.GetStores().WebhookLog.Get(s.GetContext(), "whlog_new_success")
	s.NoError(err)
	_, err = s.GetStores().WebhookLog.Get(s.GetContext(), "whlog_old_failed")
	s.NoError(err)
	_, err = s.GetStores().WebhookLog.Get(s.GetContext(), "whlog_ancient_failed")
	s.True(ierr.IsNotFound(err))
}
