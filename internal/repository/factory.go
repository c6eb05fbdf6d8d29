package repository

import (
	"github.com/loopreach/loopreach/internal/cache"
	"github.com/loopreach/loopreach/internal/domain/campaign"
	"github.com/loopreach/loopreach/internal/domain/cart"
	"github.com/loopreach/loopreach/internal/domain/customer"
	"github.com/loopreach/loopreach/internal/domain/integration"
	"github.com/loopreach/loopreach/internal/domain/message"
	"github.com/loopreach/loopreach/internal/domain/order"
	"github.com/loopreach/loopreach/internal/domain/product"
	"github.com/loopreach/loopreach/internal/domain/webhooklog"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	repo "github.com/loopreach/loopreach/internal/repository/gorm"
)

func NewIntegrationRepository(db postgres.IClient, logger *logger.Logger, cache cache.Cache) integration.Repository {
	return repo.NewIntegrationRepository(db, logger, cache)
}

func NewWebhookLogRepository(db postgres.IClient, logger *logger.Logger) webhooklog.Repository {
	return repo.NewWebhookLogRepository(db, logger)
}

func NewCustomerRepository(db postgres.IClient, logger *logger.Logger) customer.Repository {
	return repo.NewCustomerRepository(db, logger)
}

func NewOrderRepository(db postgres.IClient, logger *logger.Logger) order.Repository {
	return repo.NewOrderRepository(db, logger)
}

func NewProductRepository(db postgres.IClient, logger *logger.Logger) product.Repository {
	return repo.NewProductRepository(db, logger)
}

func NewCartRepository(db postgres.IClient, logger *logger.Logger) cart.Repository {
	return repo.NewCartRepository(db, logger)
}

func NewMessageRepository(db postgres.IClient, logger *logger.Logger) message.Repository {
	return repo.NewMessageRepository(db, logger)
}

func NewCampaignRepository(db postgres.IClient, logger *logger.Logger) campaign.Repository {
	return repo.NewCampaignRepository(db, logger)
}
