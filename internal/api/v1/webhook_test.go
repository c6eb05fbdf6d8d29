package v1

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loopreach/loopreach/internal/domain/integration"
	"github.com/loopreach/loopreach/internal/domain/message"
	"github.com/loopreach/loopreach/internal/integration/shopify"
	shopifywebhook "github.com/loopreach/loopreach/internal/integration/shopify/webhook"
	"github.com/loopreach/loopreach/internal/integration/twilio"
	twiliowebhook "github.com/loopreach/loopreach/internal/integration/twilio/webhook"
	"github.com/loopreach/loopreach/internal/service"
	"github.com/loopreach/loopreach/internal/testutil"
	"github.com/loopreach/loopreach/internal/types"
	"github.com/stretchr/testify/suite"
)

const (
	testShopifySecret = "whsec_test"
	testTwilioToken   = "twtoken_test"
	testShopDomain    = "test.example.com"
	testAccountSID    = "AC1234567890"
)

type WebhookEndpointSuite struct {
	testutil.BaseServiceTestSuite
	router     *gin.Engine
	logService service.WebhookLogService
}

func TestWebhookEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(WebhookEndpointSuite))
}

func (s *WebhookEndpointSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	cfg := s.GetConfig()
	cfg.Webhook.ShopifyAPISecret = testShopifySecret
	cfg.Webhook.TwilioAuthToken = testTwilioToken

	params := service.ServiceParams{
		Logger:          s.GetLogger(),
		Config:          cfg,
		DB:              s.GetDB(),
		IntegrationRepo: stores.Integration,
		WebhookLogRepo:  stores.WebhookLog,
		CustomerRepo:    stores.Customer,
		OrderRepo:       stores.Order,
		ProductRepo:     stores.Product,
		CartRepo:        stores.Cart,
		MessageRepo:     stores.Message,
		CampaignRepo:    stores.Campaign,
	}
	s.logService = service.NewWebhookLogService(params)

	shopifyClient := shopify.NewClient(testShopifySecret, s.GetLogger())
	shopifyHandler := shopifywebhook.NewHandler(
		s.GetDB(), stores.Customer, stores.Order, stores.Product, stores.Cart, cfg, s.GetLogger())
	twilioHandler := twiliowebhook.NewHandler(
		s.GetDB(), stores.Message, stores.Customer, stores.Campaign, s.GetLogger())

	handler := NewWebhookHandler(
		cfg, s.GetLogger(), stores.Integration, s.logService,
		shopifyClient, shopifyHandler, twilioHandler)

	s.router = gin.New()
	s.router.POST("/v1/webhooks/shopify", handler.HandleShopifyWebhook)
	s.router.GET("/v1/webhooks/shopify/callback", handler.HandleShopifyOAuthCallback)
	s.router.POST("/v1/webhooks/twilio", handler.HandleTwilioWebhook)

	s.seedIntegrations()
}

func (s *WebhookEndpointSuite) seedIntegrations() {
	shopifyInteg := &integration.Integration{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INTEGRATION),
		Platform:   types.WebhookPlatformShopify,
		ShopDomain: testShopDomain,
		IsActive:   true,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Integration.Create(s.GetContext(), shopifyInteg))

	twilioInteg := &integration.Integration{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INTEGRATION),
		Platform:      types.WebhookPlatformTwilio,
		AccountSID:    testAccountSID,
		WebhookSecret: testTwilioToken,
		IsActive:      true,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Integration.Create(s.GetContext(), twilioInteg))
}

func signShopifyBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testShopifySecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *WebhookEndpointSuite) postShopify(topic, shopDomain string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(shopify.TopicHeader, topic)
	req.Header.Set(shopify.ShopDomainHeader, shopDomain)
	req.Header.Set(shopify.SignatureHeader, signature)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

const orderCreateBody = `{
	"id": 1001,
	"order_number": 1001,
	"total_price": "42.00",
	"currency": "USD",
	"financial_status": "paid",
	"created_at": "2026-08-01T10:00:00Z",
	"customer": {"id": 555, "email": "jane@example.com"}
}`

func (s *WebhookEndpointSuite) TestOrderCreateEndToEnd() {
	body := []byte(orderCreateBody)
	w := s.postShopify("orders/create", testShopDomain, body, signShopifyBody(body))

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(true, resp["success"])
	s.Equal("orders/create", resp["topic"])

	// The order landed under the resolved tenant
	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.Equal(testutil.TestOrganizationID, o.OrganizationID)

	c, err := s.GetStores().Customer.GetByEmail(s.GetContext(), "jane@example.com")
	s.NoError(err)
	s.Equal(c.ID, o.CustomerID)

	// And the delivery trail terminated in SUCCESS
	entries := s.GetStores().WebhookLog.All()
	s.Require().Len(entries, 1)
	entry := entries[0]
	s.Equal(types.WebhookLogStatusSuccess, entry.Status)
	s.Equal(testutil.TestOrganizationID, entry.OrganizationID)
	s.Equal("1001", entry.ExternalID)
	s.NotNil(entry.ProcessedAt)
	s.GreaterOrEqual(entry.DurationMs, int64(0))
}

func (s *WebhookEndpointSuite) TestInvalidSignatureRejected() {
	body := []byte(orderCreateBody)
	w := s.postShopify("orders/create", testShopDomain, body, "forged-signature")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.NotContains(w.Body.String(), "hmac")

	s.Equal(0, s.GetStores().Order.Count())

	entries := s.GetStores().WebhookLog.All()
	s.Require().Len(entries, 1)
	s.Equal(types.WebhookLogStatusFailed, entries[0].Status)
	s.Equal("401", entries[0].ErrorCode)
}

func (s *WebhookEndpointSuite) TestUnknownShopDomainRejected() {
	body := []byte(orderCreateBody)
	w := s.postShopify("orders/create", "unknown.example.com", body, signShopifyBody(body))

	s.Equal(http.StatusNotFound, w.Code)

	entries := s.GetStores().WebhookLog.All()
	s.Require().Len(entries, 1)
	s.Equal(types.WebhookLogStatusFailed, entries[0].Status)
	s.Equal("404", entries[0].ErrorCode)
}

func (s *WebhookEndpointSuite) TestUnhandledTopicAcknowledged() {
	body := []byte(`{"id": 1}`)
	w := s.postShopify("inventory_levels/update", testShopDomain, body, signShopifyBody(body))

	s.Equal(http.StatusOK, w.Code)

	// Logged as SUCCESS so it never drags the health score down
	entries := s.GetStores().WebhookLog.All()
	s.Require().Len(entries, 1)
	s.Equal(types.WebhookLogStatusSuccess, entries[0].Status)
}

func (s *WebhookEndpointSuite) TestMalformedPayloadReturnsGenericError() {
	body := []byte(`{"id": `)
	w := s.postShopify("orders/create", testShopDomain, body, signShopifyBody(body))

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal(`{"error":"internal error"}`, strings.TrimSpace(w.Body.String()))

	entries := s.GetStores().WebhookLog.All()
	s.Require().Len(entries, 1)
	s.Equal(types.WebhookLogStatusFailed, entries[0].Status)
	s.Equal("500", entries[0].ErrorCode)
}

func signTwilioForm(callbackURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msg := callbackURL
	for _, k := range keys {
		msg += k + form.Get(k)
	}
	mac := hmac.New(sha256.New, []byte(testTwilioToken))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *WebhookEndpointSuite) postTwilio(form url.Values, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(twilio.SignatureHeader, signature)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *WebhookEndpointSuite) TestTwilioStatusCallbackEndToEnd() {
	m := &message.Message{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MESSAGE),
		CustomerID:  "cust_1",
		Channel:     types.MessageChannelSMS,
		Direction:   types.MessageDirectionOutbound,
		Status:      types.MessageStatusSent,
		ProviderSID: "SM100",
		SentAt:      time.Now().UTC(),
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Message.Create(s.GetContext(), m))

	form := url.Values{}
	form.Set("AccountSid", testAccountSID)
	form.Set("MessageSid", "SM100")
	form.Set("MessageStatus", "delivered")

	w := s.postTwilio(form, signTwilioForm("http://example.com/v1/webhooks/twilio", form))
	s.Equal(http.StatusOK, w.Code)

	updated, err := s.GetStores().Message.Get(s.GetContext(), m.ID)
	s.NoError(err)
	s.Equal(types.MessageStatusDelivered, updated.Status)

	entries := s.GetStores().WebhookLog.All()
	s.Require().Len(entries, 1)
	s.Equal(types.WebhookLogStatusSuccess, entries[0].Status)
	s.Equal(types.WebhookPlatformTwilio, entries[0].Platform)
}

func (s *WebhookEndpointSuite) TestTwilioBadSignatureRejected() {
	form := url.Values{}
	form.Set("AccountSid", testAccountSID)
	form.Set("MessageSid", "SM100")
	form.Set("MessageStatus", "delivered")

	w := s.postTwilio(form, "forged")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebhookEndpointSuite) TestTwilioUnknownAccountRejected() {
	form := url.Values{}
	form.Set("AccountSid", "AC_UNKNOWN")
	form.Set("MessageStatus", "delivered")
	form.Set("MessageSid", "SM100")

	w := s.postTwilio(form, signTwilioForm("http://example.com/v1/webhooks/twilio", form))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *WebhookEndpointSuite) TestOAuthCallbackVerification() {
	query := url.Values{}
	query.Set("shop", testShopDomain)
	query.Set("code", "authcode")
	query.Set("timestamp", "1700000000")

	msg := "code=authcode&shop=" + testShopDomain + "&timestamp=1700000000"
	mac := hmac.New(sha256.New, []byte(testShopifySecret))
	mac.Write([]byte(msg))
	query.Set("hmac", hex.EncodeToString(mac.Sum(nil)))

	req := httptest.NewRequest(http.MethodGet, "/v1/webhooks/shopify/callback?"+query.Encode(), nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)

	// Tampering any parameter invalidates the digest
	query.Set("shop", "evil.example.com")
	req = httptest.NewRequest(http.MethodGet, "/v1/webhooks/shopify/callback?"+query.Encode(), nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}
