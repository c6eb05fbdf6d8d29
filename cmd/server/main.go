package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loopreach/loopreach/internal/api"
	v1 "github.com/loopreach/loopreach/internal/api/v1"
	"github.com/loopreach/loopreach/internal/cache"
	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/domain/campaign"
	"github.com/loopreach/loopreach/internal/domain/cart"
	"github.com/loopreach/loopreach/internal/domain/customer"
	"github.com/loopreach/loopreach/internal/domain/integration"
	"github.com/loopreach/loopreach/internal/domain/message"
	"github.com/loopreach/loopreach/internal/domain/order"
	"github.com/loopreach/loopreach/internal/domain/product"
	"github.com/loopreach/loopreach/internal/domain/webhooklog"
	shopifyclient "github.com/loopreach/loopreach/internal/integration/shopify"
	shopifywebhook "github.com/loopreach/loopreach/internal/integration/shopify/webhook"
	twiliowebhook "github.com/loopreach/loopreach/internal/integration/twilio/webhook"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/repository"
	"github.com/loopreach/loopreach/internal/sentry"
	"github.com/loopreach/loopreach/internal/service"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			cache.Initialize,
			sentry.NewSentryService,

			postgres.NewGormDB,
			postgres.NewClient,

			repository.NewIntegrationRepository,
			repository.NewWebhookLogRepository,
			repository.NewCustomerRepository,
			repository.NewOrderRepository,
			repository.NewProductRepository,
			repository.NewCartRepository,
			repository.NewMessageRepository,
			repository.NewCampaignRepository,

			provideServiceParams,
			service.NewWebhookLogService,
			service.NewRateLimitService,

			provideShopifyClient,
			provideShopifyWebhookHandler,
			provideTwilioWebhookHandler,

			v1.NewHealthHandler,
			provideWebhookHandler,
			v1.NewWebhookLogHandler,
			v1.NewRateLimitHandler,

			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startCleanupLoop,
			startServer,
		),
	)

	app.Run()
}

func provideServiceParams(params struct {
	fx.In

	Logger          *logger.Logger
	Config          *config.Configuration
	DB              postgres.IClient
	IntegrationRepo integration.Repository
	WebhookLogRepo  webhooklog.Repository
	CustomerRepo    customer.Repository
	OrderRepo       order.Repository
	ProductRepo     product.Repository
	CartRepo        cart.Repository
	MessageRepo     message.Repository
	CampaignRepo    campaign.Repository
}) service.ServiceParams {
	return service.ServiceParams{
		Logger:          params.Logger,
		Config:          params.Config,
		DB:              params.DB,
		IntegrationRepo: params.IntegrationRepo,
		WebhookLogRepo:  params.WebhookLogRepo,
		CustomerRepo:    params.CustomerRepo,
		OrderRepo:       params.OrderRepo,
		ProductRepo:     params.ProductRepo,
		CartRepo:        params.CartRepo,
		MessageRepo:     params.MessageRepo,
		CampaignRepo:    params.CampaignRepo,
	}
}

func provideShopifyClient(cfg *config.Configuration, log *logger.Logger) *shopifyclient.Client {
	return shopifyclient.NewClient(cfg.Webhook.ShopifyAPISecret, log)
}

func provideShopifyWebhookHandler(params service.ServiceParams) *shopifywebhook.Handler {
	return shopifywebhook.NewHandler(
		params.DB,
		params.CustomerRepo,
		params.OrderRepo,
		params.ProductRepo,
		params.CartRepo,
		params.Config,
		params.Logger,
	)
}

func provideTwilioWebhookHandler(params service.ServiceParams) *twiliowebhook.Handler {
	return twiliowebhook.NewHandler(
		params.DB,
		params.MessageRepo,
		params.CustomerRepo,
		params.CampaignRepo,
		params.Logger,
	)
}

func provideWebhookHandler(
	params service.ServiceParams,
	logService service.WebhookLogService,
	client *shopifyclient.Client,
	shopifyHandler *shopifywebhook.Handler,
	twilioHandler *twiliowebhook.Handler,
) *v1.WebhookHandler {
	return v1.NewWebhookHandler(
		params.Config,
		params.Logger,
		params.IntegrationRepo,
		logService,
		client,
		shopifyHandler,
		twilioHandler,
	)
}

func provideHandlers(
	health *v1.HealthHandler,
	webhook *v1.WebhookHandler,
	webhookLog *v1.WebhookLogHandler,
	rateLimit *v1.RateLimitHandler,
) api.Handlers {
	return api.Handlers{
		Health:     health,
		Webhook:    webhook,
		WebhookLog: webhookLog,
		RateLimit:  rateLimit,
	}
}

// startCleanupLoop sweeps expired webhook log entries once a day
func startCleanupLoop(
	lc fx.Lifecycle,
	logService service.WebhookLogService,
	log *logger.Logger,
) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(24 * time.Hour)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if _, err := logService.Cleanup(context.Background()); err != nil {
							log.Errorw("webhook log cleanup failed", "error", err)
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			close(done)
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				log.Infow("starting server", "address", cfg.Server.Address)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
