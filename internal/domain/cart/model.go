package cart

import (
	"time"

	"github.com/loopreach/loopreach/internal/types"
	"github.com/shopspring/decimal"
)

// AbandonedCart records a checkout the customer walked away from. The row is
// the trigger point for a delayed recovery notification; the decision to send
// belongs to the outbound side, which checks RecoveredAt and the rate limiter
// before acting on RemindAt.
type AbandonedCart struct {
	ID string `db:"id" json:"id"`

	// CheckoutID is the provider's id for the abandoned checkout
	CheckoutID string `db:"checkout_id" json:"checkout_id"`

	CustomerID string `db:"customer_id" json:"customer_id"`
	Email      string `db:"email" json:"email"`
	Phone      string `db:"phone" json:"phone"`

	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Currency   string          `db:"currency" json:"currency"`

	// RecoveryURL is the provider link that restores the checkout
	RecoveryURL string `db:"recovery_url" json:"recovery_url"`

	AbandonedAt time.Time `db:"abandoned_at" json:"abandoned_at"`

	// RemindAt is when the recovery nudge becomes eligible to send
	RemindAt time.Time `db:"remind_at" json:"remind_at"`

	// RecoveredAt is set when the underlying order completes; a recovered
	// cart never sends a nudge
	RecoveredAt *time.Time `db:"recovered_at" json:"recovered_at,omitempty"`

	types.BaseModel
}

func (c *AbandonedCart) TableName() string {
	return "abandoned_carts"
}
