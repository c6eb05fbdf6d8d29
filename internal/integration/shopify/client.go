package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
)

// SignatureHeader carries the webhook digest on every delivery
const SignatureHeader = "X-Shopify-Hmac-Sha256"

// ShopDomainHeader identifies the sending store
const ShopDomainHeader = "X-Shopify-Shop-Domain"

// TopicHeader carries the event topic, e.g. orders/create
const TopicHeader = "X-Shopify-Topic"

// EventIDHeader is the provider's unique delivery identifier
const EventIDHeader = "X-Shopify-Webhook-Id"

// Client verifies inbound traffic signed with the app's shared API secret.
// Verification is per app, not per store, so one client serves all tenants.
type Client struct {
	apiSecret string
	logger    *logger.Logger
}

func NewClient(apiSecret string, logger *logger.Logger) *Client {
	return &Client{
		apiSecret: apiSecret,
		logger:    logger,
	}
}

// VerifyWebhookSignature checks the base64 HMAC-SHA256 digest of the raw
// request body. The body must be the exact bytes received; any re-encoding
// before verification breaks the digest.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) error {
	if signature == "" {
		return ierr.NewError("missing webhook signature").
			WithHint("Webhook deliveries must carry a signature header").
			Mark(ierr.ErrSignatureInvalid)
	}

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ierr.NewError("webhook signature mismatch").
			WithHint("The webhook payload failed signature verification").
			Mark(ierr.ErrSignatureInvalid)
	}
	return nil
}

// VerifyOAuthCallback checks the hex HMAC-SHA256 digest of the install
// callback query string. The hmac and signature parameters are excluded from
// the signed message; the rest are sorted and joined with ampersands.
func (c *Client) VerifyOAuthCallback(query url.Values) error {
	signature := query.Get("hmac")
	if signature == "" {
		return ierr.NewError("missing hmac parameter").
			WithHint("OAuth callbacks must carry an hmac parameter").
			Mark(ierr.ErrSignatureInvalid)
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		if key == "hmac" || key == "signature" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+query.Get(key))
	}

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ierr.NewError("oauth callback signature mismatch").
			WithHint("The OAuth callback failed signature verification").
			Mark(ierr.ErrSignatureInvalid)
	}
	return nil
}
