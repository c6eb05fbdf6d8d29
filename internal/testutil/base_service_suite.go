package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/stretchr/testify/suite"
)

// Stores bundles every in-memory repository used by service and handler
// tests
type Stores struct {
	Integration *InMemoryIntegrationStore
	WebhookLog  *InMemoryWebhookLogStore
	Customer    *InMemoryCustomerStore
	Order       *InMemoryOrderStore
	Product     *InMemoryProductStore
	Cart        *InMemoryCartStore
	Message     *InMemoryMessageStore
	Campaign    *InMemoryCampaignStore
}

// BaseServiceTestSuite provides the shared fixture: a tenant-scoped context,
// default config, and in-memory stores reset before every test.
type BaseServiceTestSuite struct {
	suite.Suite

	ctx    context.Context
	cfg    *config.Configuration
	log    *logger.Logger
	db     postgres.IClient
	stores Stores
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.cfg = config.GetDefaultConfig()
	s.log = logger.L
	s.db = NewMockPostgresClient()
	s.stores = Stores{
		Integration: NewInMemoryIntegrationStore(),
		WebhookLog:  NewInMemoryWebhookLogStore(),
		Customer:    NewInMemoryCustomerStore(),
		Order:       NewInMemoryOrderStore(),
		Product:     NewInMemoryProductStore(),
		Cart:        NewInMemoryCartStore(),
		Message:     NewInMemoryMessageStore(),
		Campaign:    NewInMemoryCampaignStore(),
	}
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.log
}

func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}
