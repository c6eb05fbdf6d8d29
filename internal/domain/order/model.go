package order

import (
	"time"

	"github.com/loopreach/loopreach/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Order is a commerce order synced from the provider. Re-delivery of the same
// provider event overwrites mutable fields and never appends a second row:
// (ShopifyID, OrganizationID) carries a unique constraint.
type Order struct {
	ID string `db:"id" json:"id"`

	// ShopifyID is the provider's id for the order
	ShopifyID string `db:"shopify_id" json:"shopify_id"`

	// CustomerID references the resolved-or-created customer
	CustomerID string `db:"customer_id" json:"customer_id"`

	OrderNumber string `db:"order_number" json:"order_number"`

	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Currency   string          `db:"currency" json:"currency"`

	PaymentStatus     types.OrderPaymentStatus `db:"payment_status" json:"payment_status"`
	FulfillmentStatus string                   `db:"fulfillment_status" json:"fulfillment_status"`

	// RefundedAmount is re-derived from the provider's transaction list on
	// every refund event rather than incremented
	RefundedAmount decimal.Decimal `db:"refunded_amount" json:"refunded_amount"`

	// RefundIDs holds the provider refund ids already applied to this order,
	// so a redelivered refund event is a no-op
	RefundIDs []string `db:"refund_ids" json:"refund_ids" gorm:"serializer:json"`

	PlacedAt time.Time `db:"placed_at" json:"placed_at"`

	types.BaseModel
}

func (o *Order) TableName() string {
	return "orders"
}

// HasRefund reports whether the provider refund id was already applied
func (o *Order) HasRefund(refundID string) bool {
	return lo.Contains(o.RefundIDs, refundID)
}
