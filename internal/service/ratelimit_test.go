package service

import (
	"testing"
	"time"

	"github.com/loopreach/loopreach/internal/domain/message"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/testutil"
	"github.com/loopreach/loopreach/internal/types"
	"github.com/stretchr/testify/suite"
)

type RateLimitServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RateLimitService
}

func TestRateLimitService(t *testing.T) {
	suite.Run(t, new(RateLimitServiceSuite))
}

func (s *RateLimitServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRateLimitService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		MessageRepo: s.GetStores().Message,
	})
}

func (s *RateLimitServiceSuite) seedOutbound(customerID string, sentAt time.Time) {
	m := &message.Message{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MESSAGE),
		CustomerID: customerID,
		Channel:    types.MessageChannelSMS,
		Direction:  types.MessageDirectionOutbound,
		Status:     types.MessageStatusSent,
		SentAt:     sentAt,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Message.Create(s.GetContext(), m))
}

func (s *RateLimitServiceSuite) TestAllowsCustomerWithNoSendsToday() {
	result, err := s.service.Check(s.GetContext(), "cust_1", types.MessageChannelSMS)
	s.NoError(err)
	s.True(result.Allowed)
	s.Equal(int64(0), result.MessagesSentToday)
	s.Equal(1, result.MaxPerDay)
	s.Nil(result.LastMessageAt)
}

func (s *RateLimitServiceSuite) TestDeniesAfterDailyCapReached() {
	// Default cap is one send per day
	s.seedOutbound("cust_1", time.Now())

	result, err := s.service.Check(s.GetContext(), "cust_1", types.MessageChannelSMS)
	s.NoError(err)
	s.False(result.Allowed)
	s.Equal(int64(1), result.MessagesSentToday)
	s.NotNil(result.LastMessageAt)
	s.InDelta(float64(s.GetConfig().RateLimit.CooldownHours), result.RemainingCooldownHours, 0.1)
}

func (s *RateLimitServiceSuite) TestCooldownClampsAtZero() {
	svc := s.service.(*rateLimitService)
	past := time.Now().Add(-time.Duration(s.GetConfig().RateLimit.CooldownHours+6) * time.Hour)

	result := svc.evaluate(1, &past)
	s.False(result.Allowed)
	s.Equal(float64(0), result.RemainingCooldownHours)
}

func (s *RateLimitServiceSuite) TestCooldownSpansDailyReset() {
	// A send one minute before local midnight resets the daily counter at
	// 00:00, but the cooldown has not elapsed: admission stays denied. The
	// widened cooldown keeps the send inside it at any wall-clock time.
	s.GetConfig().RateLimit.CooldownHours = 48
	lateYesterday := startOfToday().Add(-time.Minute)
	s.seedOutbound("cust_1", lateYesterday)

	result, err := s.service.Check(s.GetContext(), "cust_1", types.MessageChannelSMS)
	s.NoError(err)
	s.False(result.Allowed)
	s.Equal(int64(0), result.MessagesSentToday)
	s.NotNil(result.LastMessageAt)
	s.Greater(result.RemainingCooldownHours, float64(0))

	expected := float64(s.GetConfig().RateLimit.CooldownHours) - time.Since(lateYesterday).Hours()
	s.InDelta(expected, result.RemainingCooldownHours, 0.1)
}

func (s *RateLimitServiceSuite) TestCooldownElapsedAdmitsWithZeroSendsToday() {
	svc := s.service.(*rateLimitService)
	cooldown := time.Duration(s.GetConfig().RateLimit.CooldownHours) * time.Hour

	within := time.Now().Add(-cooldown / 2)
	result := svc.evaluate(0, &within)
	s.False(result.Allowed)
	s.Greater(result.RemainingCooldownHours, float64(0))

	elapsed := time.Now().Add(-cooldown - time.Hour)
	result = svc.evaluate(0, &elapsed)
	s.True(result.Allowed)
	s.Equal(float64(0), result.RemainingCooldownHours)
}

func (s *RateLimitServiceSuite) TestChannelsAreIndependent() {
	s.seedOutbound("cust_1", time.Now())

	result, err := s.service.Check(s.GetContext(), "cust_1", types.MessageChannelWhatsApp)
	s.NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitServiceSuite) TestInboundDoesNotCountAgainstCap() {
	m := &message.Message{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MESSAGE),
		CustomerID: "cust_1",
		Channel:    types.MessageChannelSMS,
		Direction:  types.MessageDirectionInbound,
		Status:     types.MessageStatusReplied,
		SentAt:     time.Now(),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Message.Create(s.GetContext(), m))

	result, err := s.service.Check(s.GetContext(), "cust_1", types.MessageChannelSMS)
	s.NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitServiceSuite) TestFailsOpenOnStoreError() {
	s.GetStores().Message.WindowErr = ierr.NewError("aggregate query failed").Mark(ierr.ErrDatabase)

	result, err := s.service.Check(s.GetContext(), "cust_1", types.MessageChannelSMS)
	s.NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitServiceSuite) TestBatchGroupsPerCustomer() {
	s.seedOutbound("cust_capped", time.Now())

	results, err := s.service.CheckBatch(s.GetContext(),
		[]string{"cust_capped", "cust_fresh"}, types.MessageChannelSMS)
	s.NoError(err)
	s.Len(results, 2)
	s.False(results["cust_capped"].Allowed)
	s.True(results["cust_fresh"].Allowed)
}

func (s *RateLimitServiceSuite) TestBatchFailsOpenOnStoreError() {
	s.GetStores().Message.WindowErr = ierr.NewError("aggregate query failed").Mark(ierr.ErrDatabase)

	results, err := s.service.CheckBatch(s.GetContext(),
		[]string{"cust_a", "cust_b"}, types.MessageChannelSMS)
	s.NoError(err)
	s.True(results["cust_a"].Allowed)
	s.True(results["cust_b"].Allowed)
}
