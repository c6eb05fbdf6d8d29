package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loopreach/loopreach/internal/api/dto"
	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/domain/integration"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/integration/shopify"
	shopifywebhook "github.com/loopreach/loopreach/internal/integration/shopify/webhook"
	"github.com/loopreach/loopreach/internal/integration/twilio"
	twiliowebhook "github.com/loopreach/loopreach/internal/integration/twilio/webhook"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/service"
	"github.com/loopreach/loopreach/internal/types"
)

// WebhookHandler composes the inbound pipeline:
// verify -> log(received) -> resolve tenant -> log(processing) -> route ->
// log(success|failure). Every request is guaranteed a terminal log status;
// the deferred guard covers panics inside topic handlers.
type WebhookHandler struct {
	cfg             *config.Configuration
	logger          *logger.Logger
	integrationRepo integration.Repository
	logService      service.WebhookLogService
	shopifyClient   *shopify.Client
	shopifyHandler  *shopifywebhook.Handler
	twilioHandler   *twiliowebhook.Handler
}

func NewWebhookHandler(
	cfg *config.Configuration,
	logger *logger.Logger,
	integrationRepo integration.Repository,
	logService service.WebhookLogService,
	shopifyClient *shopify.Client,
	shopifyHandler *shopifywebhook.Handler,
	twilioHandler *twiliowebhook.Handler,
) *WebhookHandler {
	return &WebhookHandler{
		cfg:             cfg,
		logger:          logger,
		integrationRepo: integrationRepo,
		logService:      logService,
		shopifyClient:   shopifyClient,
		shopifyHandler:  shopifyHandler,
		twilioHandler:   twilioHandler,
	}
}

// externalIDFromBody pulls the provider object id out of the raw payload for
// log correlation. Failure to parse is not an error at this stage.
func externalIDFromBody(body []byte) string {
	var envelope struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.ID.String()
}

func (h *WebhookHandler) HandleShopifyWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	// Signature verification needs the exact bytes as delivered
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}

	topic := c.GetHeader(shopify.TopicHeader)
	shopDomain := c.GetHeader(shopify.ShopDomainHeader)

	rl := h.logService.LogReceived(ctx, types.WebhookPlatformShopify, topic, shopDomain, externalIDFromBody(body))

	terminal := false
	defer func() {
		if !terminal {
			h.logService.LogFailure(ctx, rl, "", ierr.NewError("handler panicked").Mark(ierr.ErrSystem), "500")
		}
	}()

	if err := h.shopifyClient.VerifyWebhookSignature(body, c.GetHeader(shopify.SignatureHeader)); err != nil {
		h.logService.LogFailure(ctx, rl, "", err, "401")
		terminal = true
		c.JSON(http.StatusUnauthorized, dto.ErrResponseUnauthorized)
		return
	}

	integ, err := h.integrationRepo.GetActiveByShopDomain(ctx, shopDomain)
	if err != nil {
		if ierr.IsIntegrationNotFound(err) {
			h.logService.LogFailure(ctx, rl, "", err, "404")
			terminal = true
			c.JSON(http.StatusNotFound, dto.ErrResponseNotFound)
			return
		}
		h.logService.LogFailure(ctx, rl, "", err, "500")
		terminal = true
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}

	ctx = types.SetOrganizationID(ctx, integ.OrganizationID)
	h.logService.LogProcessing(ctx, rl.ID, integ.OrganizationID)

	handled, err := h.shopifyHandler.HandleEvent(ctx, topic, body)
	if err != nil {
		h.logger.Errorw("shopify webhook processing failed",
			"topic", topic,
			"shop_domain", shopDomain,
			"error", err)
		h.logService.LogFailure(ctx, rl, integ.OrganizationID, err, "500")
		terminal = true
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}

	if !handled {
		h.logger.Infow("acknowledged unhandled webhook topic", "topic", topic)
	}
	h.logService.LogSuccess(ctx, rl, integ.OrganizationID)
	terminal = true
	c.JSON(http.StatusOK, dto.WebhookAckResponse{Success: true, Topic: topic})
}

// HandleShopifyOAuthCallback verifies the signed install handshake. The
// digest covers sorted query parameters, not the body.
func (h *WebhookHandler) HandleShopifyOAuthCallback(c *gin.Context) {
	if err := h.shopifyClient.VerifyOAuthCallback(c.Request.URL.Query()); err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrResponseUnauthorized)
		return
	}
	c.JSON(http.StatusOK, dto.WebhookAckResponse{Success: true})
}

// HandleTwilioWebhook processes telephony callbacks. Tenant resolution runs
// before verification here because the signing key is the per-account auth
// token stored on the integration.
func (h *WebhookHandler) HandleTwilioWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed form body"})
		return
	}
	form := c.Request.PostForm

	externalID := form.Get("MessageSid")
	if externalID == "" {
		externalID = form.Get("SmsSid")
	}

	rl := h.logService.LogReceived(ctx, types.WebhookPlatformTwilio, types.WebhookTopicMessageStatus, "", externalID)

	terminal := false
	defer func() {
		if !terminal {
			h.logService.LogFailure(ctx, rl, "", ierr.NewError("handler panicked").Mark(ierr.ErrSystem), "500")
		}
	}()

	integ, err := h.integrationRepo.GetActiveByAccountSID(ctx, form.Get("AccountSid"))
	if err != nil {
		if ierr.IsIntegrationNotFound(err) {
			h.logService.LogFailure(ctx, rl, "", err, "404")
			terminal = true
			c.JSON(http.StatusNotFound, dto.ErrResponseNotFound)
			return
		}
		h.logService.LogFailure(ctx, rl, "", err, "500")
		terminal = true
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}

	authToken := integ.WebhookSecret
	if authToken == "" {
		authToken = h.cfg.Webhook.TwilioAuthToken
	}
	client := twilio.NewClient(authToken, h.logger)
	if err := client.VerifySignature(callbackURL(c), form, c.GetHeader(twilio.SignatureHeader)); err != nil {
		h.logService.LogFailure(ctx, rl, "", err, "401")
		terminal = true
		c.JSON(http.StatusUnauthorized, dto.ErrResponseUnauthorized)
		return
	}

	ctx = types.SetOrganizationID(ctx, integ.OrganizationID)
	h.logService.LogProcessing(ctx, rl.ID, integ.OrganizationID)

	if err := h.twilioHandler.HandleCallback(ctx, form); err != nil {
		h.logger.Errorw("twilio callback processing failed",
			"message_sid", externalID,
			"error", err)
		h.logService.LogFailure(ctx, rl, integ.OrganizationID, err, "500")
		terminal = true
		c.JSON(http.StatusInternalServerError, dto.ErrResponseInternal)
		return
	}

	h.logService.LogSuccess(ctx, rl, integ.OrganizationID)
	terminal = true
	c.JSON(http.StatusOK, dto.WebhookAckResponse{Success: true, Topic: types.WebhookTopicMessageStatus})
}

// callbackURL reconstructs the public URL the provider signed. Behind a
// proxy the forwarded proto header wins over the TLS state of the local
// listener.
func callbackURL(c *gin.Context) string {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if c.Request.TLS == nil {
			scheme = "http"
		}
	}
	return scheme + "://" + c.Request.Host + c.Request.RequestURI
}
