package customer

import (
	"strings"

	"github.com/loopreach/loopreach/internal/types"
	"github.com/shopspring/decimal"
)

// Customer represents a customer in the system
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `db:"id" json:"id"`

	// ShopifyID is the commerce provider's identifier for the customer.
	// (ShopifyID, OrganizationID) is the idempotency key for provider upserts.
	ShopifyID string `db:"shopify_id" json:"shopify_id"`

	// Email is the email of the customer, stored lowercased
	Email string `db:"email" json:"email"`

	// Phone is the customer's phone number in E.164 format
	Phone string `db:"phone" json:"phone"`

	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`

	// TotalSpent is the customer's lifetime spend, decremented on refunds
	// and floored at zero
	TotalSpent decimal.Decimal `db:"total_spent" json:"total_spent"`

	// Opt-in flags for outbound marketing channels
	EmailOptIn bool `db:"email_opt_in" json:"email_opt_in"`
	SMSOptIn   bool `db:"sms_opt_in" json:"sms_opt_in"`

	types.BaseModel
}

func (c *Customer) TableName() string {
	return "customers"
}

// NormalizeEmail canonicalizes an email address for lookups
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ApplyRefund subtracts a refunded amount from the lifetime spend,
// flooring the result at zero
func (c *Customer) ApplyRefund(amount decimal.Decimal) {
	c.TotalSpent = c.TotalSpent.Sub(amount)
	if c.TotalSpent.IsNegative() {
		c.TotalSpent = decimal.Zero
	}
}
