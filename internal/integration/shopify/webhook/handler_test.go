package webhook

import (
	"testing"

	"github.com/loopreach/loopreach/internal/domain/customer"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/testutil"
	"github.com/loopreach/loopreach/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ShopifyWebhookHandlerSuite struct {
	testutil.BaseServiceTestSuite
	handler *Handler
}

func TestShopifyWebhookHandler(t *testing.T) {
	suite.Run(t, new(ShopifyWebhookHandlerSuite))
}

func (s *ShopifyWebhookHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.handler = NewHandler(
		s.GetDB(),
		stores.Customer,
		stores.Order,
		stores.Product,
		stores.Cart,
		s.GetConfig(),
		s.GetLogger(),
	)
}

const orderCreatePayload = `{
	"id": 1001,
	"order_number": 42,
	"total_price": "100.00",
	"currency": "USD",
	"financial_status": "paid",
	"created_at": "2026-08-01T10:00:00Z",
	"customer": {
		"id": 555,
		"email": "Jane@Example.com",
		"phone": "+15550001111",
		"first_name": "Jane",
		"last_name": "Doe",
		"accepts_marketing": true
	}
}`

func (s *ShopifyWebhookHandlerSuite) TestOrderCreate() {
	handled, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
	s.True(handled)
	s.NoError(err)

	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.Equal("42", o.OrderNumber)
	s.Equal(types.OrderPaymentStatusPaid, o.PaymentStatus)
	s.True(o.TotalPrice.Equal(decimal.RequireFromString("100.00")))
	s.Equal(testutil.TestOrganizationID, o.OrganizationID)

	c, err := s.GetStores().Customer.GetByShopifyID(s.GetContext(), "555")
	s.NoError(err)
	s.Equal("jane@example.com", c.Email)
	s.True(c.EmailOptIn)
	s.Equal(c.ID, o.CustomerID)
}

func (s *ShopifyWebhookHandlerSuite) TestOrderCreateIsIdempotent() {
	for i := 0; i < 2; i++ {
		_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
		s.NoError(err)
	}

	s.Equal(1, s.GetStores().Order.Count())
}

func (s *ShopifyWebhookHandlerSuite) TestOrderRelinksCustomerByEmail() {
	// Customer imported before the store connected its provider account:
	// known by email only, no provider id yet
	imported := &customer.Customer{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Email:     "jane@example.com",
		FirstName: "Jane",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Customer.Create(s.GetContext(), imported))

	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
	s.NoError(err)

	s.Equal(1, s.GetStores().Customer.Count(), "email match must relink, not duplicate")
	c, err := s.GetStores().Customer.GetByShopifyID(s.GetContext(), "555")
	s.NoError(err)
	s.Equal(imported.ID, c.ID)
	s.Equal("+15550001111", c.Phone)

	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.Equal(imported.ID, o.CustomerID)
}

func (s *ShopifyWebhookHandlerSuite) TestOrderLinksCustomerByEmailWithoutProviderID() {
	payload := `{
		"id": 1002,
		"order_number": 43,
		"total_price": "20.00",
		"currency": "USD",
		"financial_status": "paid",
		"created_at": "2026-08-01T11:00:00Z",
		"customer": {"email": "Jane@Example.com"}
	}`
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(payload))
	s.NoError(err)

	c, err := s.GetStores().Customer.GetByEmail(s.GetContext(), "jane@example.com")
	s.NoError(err)
	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1002")
	s.NoError(err)
	s.Equal(c.ID, o.CustomerID)
}

func (s *ShopifyWebhookHandlerSuite) TestOrderUpdateOverwritesMutableFields() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
	s.NoError(err)

	updated := `{
		"id": 1001,
		"order_number": 42,
		"total_price": "100.00",
		"currency": "USD",
		"financial_status": "refunded",
		"fulfillment_status": "fulfilled",
		"created_at": "2026-08-01T10:00:00Z"
	}`
	_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersUpdated, []byte(updated))
	s.NoError(err)

	s.Equal(1, s.GetStores().Order.Count())
	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.Equal(types.OrderPaymentStatusRefunded, o.PaymentStatus)
	s.Equal("fulfilled", o.FulfillmentStatus)
}

const productPayload = `{
	"id": 2002,
	"title": "Linen Shirt",
	"body_html": "<p>Breathable linen</p>",
	"variants": [
		{"price": "59.00", "inventory_quantity": 4},
		{"price": "61.00", "inventory_quantity": 3}
	],
	"image": {"src": "https://cdn.example.com/shirt.jpg"}
}`

func (s *ShopifyWebhookHandlerSuite) TestProductUpsert() {
	for i := 0; i < 2; i++ {
		handled, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicProductsCreate, []byte(productPayload))
		s.True(handled)
		s.NoError(err)
	}

	s.Equal(1, s.GetStores().Product.Count())
	p, err := s.GetStores().Product.GetByShopifyID(s.GetContext(), "2002")
	s.NoError(err)
	s.Equal("Linen Shirt", p.Title)
	s.True(p.Price.Equal(decimal.RequireFromString("59.00")))
	s.Equal(7, p.Inventory)
	s.Equal("https://cdn.example.com/shirt.jpg", p.ImageURL)
}

func (s *ShopifyWebhookHandlerSuite) TestProductDeleteArchives() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicProductsCreate, []byte(productPayload))
	s.NoError(err)
	p, err := s.GetStores().Product.GetByShopifyID(s.GetContext(), "2002")
	s.NoError(err)

	_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicProductsDelete, []byte(`{"id": 2002}`))
	s.NoError(err)

	archived, err := s.GetStores().Product.Get(s.GetContext(), p.ID)
	s.NoError(err)
	s.Equal(types.StatusArchived, archived.Status)
	s.Nil(archived.ShopifyID)
}

func (s *ShopifyWebhookHandlerSuite) TestProductDeleteForUnknownProductIsNoop() {
	handled, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicProductsDelete, []byte(`{"id": 9999}`))
	s.True(handled)
	s.NoError(err)
}

const refundPayload = `{
	"id": 7007,
	"order_id": 1001,
	"created_at": "2026-08-02T09:00:00Z",
	"transactions": [
		{"id": 1, "amount": "75.00", "kind": "refund", "status": "success"}
	]
}`

func (s *ShopifyWebhookHandlerSuite) TestRefundFloorsCustomerTotalSpent() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
	s.NoError(err)

	c, err := s.GetStores().Customer.GetByShopifyID(s.GetContext(), "555")
	s.NoError(err)
	c.TotalSpent = decimal.RequireFromString("50.00")
	s.Require().NoError(s.GetStores().Customer.Update(s.GetContext(), c))

	_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicRefundsCreate, []byte(refundPayload))
	s.NoError(err)

	c, err = s.GetStores().Customer.GetByShopifyID(s.GetContext(), "555")
	s.NoError(err)
	s.True(c.TotalSpent.Equal(decimal.Zero), "refund larger than lifetime spend floors at zero, got %s", c.TotalSpent)

	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.Equal(types.OrderPaymentStatusPartiallyRefunded, o.PaymentStatus)
	s.True(o.RefundedAmount.Equal(decimal.RequireFromString("75.00")))
}

func (s *ShopifyWebhookHandlerSuite) TestRefundRedeliveryDoesNotDoubleSubtract() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
	s.NoError(err)

	c, err := s.GetStores().Customer.GetByShopifyID(s.GetContext(), "555")
	s.NoError(err)
	c.TotalSpent = decimal.RequireFromString("200.00")
	s.Require().NoError(s.GetStores().Customer.Update(s.GetContext(), c))

	for i := 0; i < 2; i++ {
		_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicRefundsCreate, []byte(refundPayload))
		s.NoError(err)
	}

	c, err = s.GetStores().Customer.GetByShopifyID(s.GetContext(), "555")
	s.NoError(err)
	s.True(c.TotalSpent.Equal(decimal.RequireFromString("125.00")))

	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.True(o.RefundedAmount.Equal(decimal.RequireFromString("75.00")))
	s.Len(o.RefundIDs, 1)
}

func (s *ShopifyWebhookHandlerSuite) TestDistinctRefundsAccumulate() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(orderCreatePayload))
	s.NoError(err)

	_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicRefundsCreate, []byte(refundPayload))
	s.NoError(err)

	second := `{
		"id": 7008,
		"order_id": 1001,
		"transactions": [
			{"id": 2, "amount": "25.00", "kind": "refund", "status": "success"}
		]
	}`
	_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicRefundsCreate, []byte(second))
	s.NoError(err)

	o, err := s.GetStores().Order.GetByShopifyID(s.GetContext(), "1001")
	s.NoError(err)
	s.True(o.RefundedAmount.Equal(decimal.RequireFromString("100.00")))
	s.Equal(types.OrderPaymentStatusRefunded, o.PaymentStatus)
	s.Len(o.RefundIDs, 2)
}

func (s *ShopifyWebhookHandlerSuite) TestRefundForUnknownOrderFails() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicRefundsCreate, []byte(refundPayload))
	s.True(ierr.IsNotFound(err))
}

const checkoutPayload = `{
	"id": 3003,
	"token": "chk_token_abc",
	"email": "jane@example.com",
	"total_price": "80.00",
	"currency": "USD",
	"abandoned_checkout_url": "https://shop.example.com/recover/abc",
	"updated_at": "2026-08-10T12:00:00Z"
}`

func (s *ShopifyWebhookHandlerSuite) TestCheckoutCreatesAbandonedCart() {
	handled, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicCheckoutsUpdate, []byte(checkoutPayload))
	s.True(handled)
	s.NoError(err)

	c, err := s.GetStores().Cart.GetByCheckoutID(s.GetContext(), "chk_token_abc")
	s.NoError(err)
	s.Equal("https://shop.example.com/recover/abc", c.RecoveryURL)
	s.Equal(c.AbandonedAt.Add(s.GetConfig().Webhook.CartRecoveryDelay), c.RemindAt)
	s.Nil(c.RecoveredAt)
}

func (s *ShopifyWebhookHandlerSuite) TestCheckoutRedeliveryKeepsOneCart() {
	for i := 0; i < 2; i++ {
		_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicCheckoutsUpdate, []byte(checkoutPayload))
		s.NoError(err)
	}
	s.Equal(1, s.GetStores().Cart.Count())
}

func (s *ShopifyWebhookHandlerSuite) TestCompletedCheckoutMarksCartRecovered() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicCheckoutsUpdate, []byte(checkoutPayload))
	s.NoError(err)

	completed := `{
		"id": 3003,
		"token": "chk_token_abc",
		"completed_at": "2026-08-10T13:00:00Z"
	}`
	_, err = s.handler.HandleEvent(s.GetContext(), types.WebhookTopicCheckoutsUpdate, []byte(completed))
	s.NoError(err)

	c, err := s.GetStores().Cart.GetByCheckoutID(s.GetContext(), "chk_token_abc")
	s.NoError(err)
	s.NotNil(c.RecoveredAt)
}

func (s *ShopifyWebhookHandlerSuite) TestUnhandledTopicIsAcknowledged() {
	handled, err := s.handler.HandleEvent(s.GetContext(), "inventory_levels/update", []byte(`{"id": 1}`))
	s.False(handled)
	s.NoError(err)
}

func (s *ShopifyWebhookHandlerSuite) TestMalformedPayloadFailsValidation() {
	_, err := s.handler.HandleEvent(s.GetContext(), types.WebhookTopicOrdersCreate, []byte(`not json`))
	s.True(ierr.IsValidation(err))
}
