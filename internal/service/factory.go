package service

import (
	"github.com/loopreach/loopreach/internal/config"
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
)

// ServiceParams bundles the dependencies every service draws from. Services
// embed it so constructors stay stable as the dependency set grows.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	IntegrationRepo integration.Repository
	WebhookLogRepo  webhooklog.Repository
	CustomerRepo    customer.Repository
	OrderRepo       order.Repository
	ProductRepo     product.Repository
	CartRepo        cart.Repository
	MessageRepo     message.Repository
	CampaignRepo    campaign.Repository
}
