package product

import (
	"github.com/loopreach/loopreach/internal/types"
	"github.com/shopspring/decimal"
)

// Product is a commerce catalog item synced from the provider.
type Product struct {
	ID string `db:"id" json:"id"`

	// ShopifyID is the provider's id for the product. Nullable: deletion
	// archives the row and clears the provider id so the slot can be reused
	// if the product is re-created upstream.
	ShopifyID *string `db:"shopify_id" json:"shopify_id,omitempty"`

	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`

	// Price is taken from the first variant of the provider payload
	Price    decimal.Decimal `db:"price" json:"price"`
	Currency string          `db:"currency" json:"currency"`

	ImageURL  string `db:"image_url" json:"image_url"`
	Inventory int    `db:"inventory" json:"inventory"`

	types.BaseModel
}

func (p *Product) TableName() string {
	return "products"
}

// Archive marks the product removed upstream without destroying local
// references to it
func (p *Product) Archive() {
	p.Status = types.StatusArchived
	p.ShopifyID = nil
}
