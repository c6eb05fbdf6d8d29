package types

// WebhookPlatform identifies the external provider a webhook delivery came from
type WebhookPlatform string

const (
	WebhookPlatformShopify WebhookPlatform = "SHOPIFY"
	WebhookPlatformTwilio  WebhookPlatform = "TWILIO"
	WebhookPlatformEmail   WebhookPlatform = "EMAIL"
)

func (p WebhookPlatform) Validate() bool {
	switch p {
	case WebhookPlatformShopify, WebhookPlatformTwilio, WebhookPlatformEmail:
		return true
	default:
		return false
	}
}

// WebhookLogStatus tracks the lifecycle of a single inbound delivery attempt.
// Transitions are one-directional: RECEIVED -> PROCESSING -> {SUCCESS | FAILED}.
// FAILED may also follow RECEIVED directly (signature or tenant resolution failures).
type WebhookLogStatus string

const (
	WebhookLogStatusReceived   WebhookLogStatus = "RECEIVED"
	WebhookLogStatusProcessing WebhookLogStatus = "PROCESSING"
	WebhookLogStatusSuccess    WebhookLogStatus = "SUCCESS"
	WebhookLogStatusFailed     WebhookLogStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed from the status
func (s WebhookLogStatus) IsTerminal() bool {
	return s == WebhookLogStatusSuccess || s == WebhookLogStatusFailed
}

// CanTransitionTo enforces the monotonic status state machine
func (s WebhookLogStatus) CanTransitionTo(next WebhookLogStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case WebhookLogStatusReceived:
		return next == WebhookLogStatusProcessing || next.IsTerminal()
	case WebhookLogStatusProcessing:
		return next.IsTerminal()
	default:
		return false
	}
}

// Shopify webhook topics this system handles. Deliveries for any other topic
// are acknowledged and logged but intentionally ignored.
const (
	WebhookTopicOrdersCreate    = "orders/create"
	WebhookTopicOrdersUpdated   = "orders/updated"
	WebhookTopicProductsCreate  = "products/create"
	WebhookTopicProductsUpdate  = "products/update"
	WebhookTopicProductsDelete  = "products/delete"
	WebhookTopicRefundsCreate   = "refunds/create"
	WebhookTopicCheckoutsCreate = "checkouts/create"
	WebhookTopicCheckoutsUpdate = "checkouts/update"

	// Twilio status callbacks have no topic header; they are logged under a
	// synthetic topic so stats group them consistently.
	WebhookTopicMessageStatus = "messages/status"
)

// WebhookHealthStatus is the operator-facing classification of the trailing
// success rate of webhook processing
type WebhookHealthStatus string

const (
	WebhookHealthHealthy   WebhookHealthStatus = "healthy"
	WebhookHealthDegraded  WebhookHealthStatus = "degraded"
	WebhookHealthUnhealthy WebhookHealthStatus = "unhealthy"
)

// ClassifyWebhookHealth maps a success rate percentage to a health status
func ClassifyWebhookHealth(successRate float64) WebhookHealthStatus {
	switch {
	case successRate >= 95:
		return WebhookHealthHealthy
	case successRate >= 80:
		return WebhookHealthDegraded
	default:
		return WebhookHealthUnhealthy
	}
}
