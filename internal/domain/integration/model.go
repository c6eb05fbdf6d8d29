package integration

import (
	"strings"

	"github.com/loopreach/loopreach/internal/types"
)

// Integration holds the provider credentials connecting an organization to an
// external platform. Exactly one active integration exists per organization
// per platform; it is created on OAuth completion and deactivated on
// disconnect. This subsystem only reads it.
type Integration struct {
	// ID is the unique identifier for the integration
	ID string `db:"id" json:"id"`

	// Platform is the external provider this integration connects to
	Platform types.WebhookPlatform `db:"platform" json:"platform"`

	// AccessToken is the provider API token obtained during OAuth
	AccessToken string `db:"access_token" json:"-"`

	// WebhookSecret is the shared secret used to verify inbound deliveries
	WebhookSecret string `db:"webhook_secret" json:"-"`

	// ShopDomain is the commerce provider tenant hint, e.g. "acme.myshopify.com"
	ShopDomain string `db:"shop_domain" json:"shop_domain"`

	// AccountSID is the telephony provider tenant hint
	AccountSID string `db:"account_sid" json:"account_sid"`

	// IsActive is false once the organization disconnects the provider
	IsActive bool `db:"is_active" json:"is_active"`

	types.BaseModel
}

func (i *Integration) TableName() string {
	return "integrations"
}

// NormalizeShopDomain canonicalizes the shop domain hint so lookups succeed
// regardless of the header casing or format a provider uses
func NormalizeShopDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	if idx := strings.Index(domain, ":"); idx >= 0 {
		domain = domain[:idx]
	}
	return domain
}
