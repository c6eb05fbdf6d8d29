package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/loopreach/loopreach/internal/api/v1"
	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/rest/middleware"
	"github.com/loopreach/loopreach/internal/types"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health     *v1.HealthHandler
	Webhook    *v1.WebhookHandler
	WebhookLog *v1.WebhookLogHandler
	RateLimit  *v1.RateLimitHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", handlers.Health.Health)

	// Provider-facing endpoints authenticate by signature, not by session
	webhooks := router.Group("/v1/webhooks")
	{
		webhooks.POST("/shopify", handlers.Webhook.HandleShopifyWebhook)
		webhooks.GET("/shopify/callback", handlers.Webhook.HandleShopifyOAuthCallback)
		webhooks.POST("/twilio", handlers.Webhook.HandleTwilioWebhook)
	}

	// Internal surfaces carry the tenant in a header set by the upstream
	// gateway
	internal := router.Group("/v1", middleware.OrganizationContext())
	{
		internal.GET("/webhooks/stats", handlers.WebhookLog.GetStats)
		internal.GET("/ratelimit/check", handlers.RateLimit.Check)
		internal.GET("/ratelimit/check-batch", handlers.RateLimit.CheckBatch)
	}

	return router
}
