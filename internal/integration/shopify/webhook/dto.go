package webhook

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Provider payloads use string-encoded decimals and numeric ids. The DTOs
// keep the provider's shape; mapping to domain models happens in the handler.

type CustomerPayload struct {
	ID               json.Number `json:"id"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	AcceptsMarketing bool        `json:"accepts_marketing"`
	AcceptsSMS       bool        `json:"accepts_sms_marketing"`
}

type OrderPayload struct {
	ID                json.Number      `json:"id"`
	OrderNumber       json.Number      `json:"order_number"`
	TotalPrice        decimal.Decimal  `json:"total_price"`
	Currency          string           `json:"currency"`
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	CreatedAt         time.Time        `json:"created_at"`
	Customer          *CustomerPayload `json:"customer"`
	CheckoutID        json.Number      `json:"checkout_id"`
}

type ProductVariantPayload struct {
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventory_quantity"`
}

type ProductImagePayload struct {
	Src string `json:"src"`
}

type ProductPayload struct {
	ID       json.Number             `json:"id"`
	Title    string                  `json:"title"`
	BodyHTML string                  `json:"body_html"`
	Variants []ProductVariantPayload `json:"variants"`
	Image    *ProductImagePayload    `json:"image"`
}

// ProductDeletePayload is the minimal body of products/delete deliveries
type ProductDeletePayload struct {
	ID json.Number `json:"id"`
}

type RefundTransactionPayload struct {
	ID     json.Number     `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Kind   string          `json:"kind"`
	Status string          `json:"status"`
}

type RefundPayload struct {
	ID           json.Number                `json:"id"`
	OrderID      json.Number                `json:"order_id"`
	CreatedAt    time.Time                  `json:"created_at"`
	Transactions []RefundTransactionPayload `json:"transactions"`
}

// RefundedTotal sums the successful refund transactions of the payload. The
// provider reports the full transaction list on every delivery, so the total
// is re-derived, never accumulated.
func (p *RefundPayload) RefundedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range p.Transactions {
		if tx.Kind == "refund" && tx.Status == "success" {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

type CheckoutPayload struct {
	ID                   json.Number      `json:"id"`
	Token                string           `json:"token"`
	Email                string           `json:"email"`
	Phone                string           `json:"phone"`
	TotalPrice           decimal.Decimal  `json:"total_price"`
	Currency             string           `json:"currency"`
	AbandonedCheckoutURL string           `json:"abandoned_checkout_url"`
	UpdatedAt            time.Time        `json:"updated_at"`
	CompletedAt          *time.Time       `json:"completed_at"`
	Customer             *CustomerPayload `json:"customer"`
}
