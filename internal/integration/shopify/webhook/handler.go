package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/domain/cart"
	"github.com/loopreach/loopreach/internal/domain/customer"
	"github.com/loopreach/loopreach/internal/domain/order"
	"github.com/loopreach/loopreach/internal/domain/product"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
)

// Handler routes verified commerce webhook events to topic-specific
// processing. All handlers are idempotent: the provider redelivers on any
// non-2xx response, so every path must converge on the same state when run
// twice with the same payload.
type Handler struct {
	db           postgres.IClient
	customerRepo customer.Repository
	orderRepo    order.Repository
	productRepo  product.Repository
	cartRepo     cart.Repository
	cfg          *config.Configuration
	logger       *logger.Logger
}

func NewHandler(
	db postgres.IClient,
	customerRepo customer.Repository,
	orderRepo order.Repository,
	productRepo product.Repository,
	cartRepo cart.Repository,
	cfg *config.Configuration,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		db:           db,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// HandleEvent dispatches a delivery by topic. It returns handled=false for
// topics outside our subscription set; those are acknowledged upstream so the
// provider stops redelivering them.
func (h *Handler) HandleEvent(ctx context.Context, topic string, payload []byte) (bool, error) {
	switch topic {
	case types.WebhookTopicOrdersCreate, types.WebhookTopicOrdersUpdated:
		return true, h.handleOrderUpsert(ctx, payload)
	case types.WebhookTopicProductsCreate, types.WebhookTopicProductsUpdate:
		return true, h.handleProductUpsert(ctx, payload)
	case types.WebhookTopicProductsDelete:
		return true, h.handleProductDelete(ctx, payload)
	case types.WebhookTopicRefundsCreate:
		return true, h.handleRefund(ctx, payload)
	case types.WebhookTopicCheckoutsCreate, types.WebhookTopicCheckoutsUpdate:
		return true, h.handleCheckout(ctx, payload)
	default:
		h.logger.Debugw("ignoring unhandled webhook topic", "topic", topic)
		return false, nil
	}
}

func (h *Handler) handleOrderUpsert(ctx context.Context, payload []byte) error {
	var p OrderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ierr.WithError(err).
			WithHint("Order payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if p.ID.String() == "" {
		return ierr.NewError("order payload missing id").
			WithHint("Order events must carry the provider order id").
			Mark(ierr.ErrValidation)
	}

	return h.db.WithTx(ctx, func(ctx context.Context) error {
		customerID, err := h.upsertCustomer(ctx, p.Customer)
		if err != nil {
			return err
		}

		o := &order.Order{
			ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
			ShopifyID:         p.ID.String(),
			CustomerID:        customerID,
			OrderNumber:       p.OrderNumber.String(),
			TotalPrice:        p.TotalPrice,
			Currency:          p.Currency,
			PaymentStatus:     mapFinancialStatus(p.FinancialStatus),
			FulfillmentStatus: p.FulfillmentStatus,
			PlacedAt:          p.CreatedAt.UTC(),
			BaseModel:         types.GetDefaultBaseModel(ctx),
		}
		if err := h.orderRepo.Upsert(ctx, o); err != nil {
			return err
		}

		// A completed order recovers its originating checkout
		if p.CheckoutID.String() != "" {
			if err := h.markCartRecovered(ctx, p.CheckoutID.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *Handler) handleProductUpsert(ctx context.Context, payload []byte) error {
	var p ProductPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ierr.WithError(err).
			WithHint("Product payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if p.ID.String() == "" {
		return ierr.NewError("product payload missing id").
			WithHint("Product events must carry the provider product id").
			Mark(ierr.ErrValidation)
	}

	shopifyID := p.ID.String()
	prod := &product.Product{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		ShopifyID:   &shopifyID,
		Title:       p.Title,
		Description: p.BodyHTML,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	if len(p.Variants) > 0 {
		prod.Price = p.Variants[0].Price
		for _, v := range p.Variants {
			prod.Inventory += v.InventoryQuantity
		}
	}
	if p.Image != nil {
		prod.ImageURL = p.Image.Src
	}

	return h.productRepo.Upsert(ctx, prod)
}

// handleProductDelete archives the product instead of deleting it so orders
// and campaigns keep their references. A delete for an unknown or already
// archived product is a successful no-op.
func (h *Handler) handleProductDelete(ctx context.Context, payload []byte) error {
	var p ProductDeletePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ierr.WithError(err).
			WithHint("Product delete payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if p.ID.String() == "" {
		return ierr.NewError("product delete payload missing id").
			WithHint("Product events must carry the provider product id").
			Mark(ierr.ErrValidation)
	}

	prod, err := h.productRepo.GetByShopifyID(ctx, p.ID.String())
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}

	prod.Archive()
	return h.productRepo.Update(ctx, prod)
}

// handleRefund applies a refund exactly once, keyed on the provider refund id.
// The order row and the customer's lifetime spend move together in one
// transaction.
func (h *Handler) handleRefund(ctx context.Context, payload []byte) error {
	var p RefundPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ierr.WithError(err).
			WithHint("Refund payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if p.ID.String() == "" || p.OrderID.String() == "" {
		return ierr.NewError("refund payload missing id or order_id").
			WithHint("Refund events must carry the refund and order ids").
			Mark(ierr.ErrValidation)
	}

	return h.db.WithTx(ctx, func(ctx context.Context) error {
		o, err := h.orderRepo.GetByShopifyID(ctx, p.OrderID.String())
		if err != nil {
			return err
		}

		if o.HasRefund(p.ID.String()) {
			h.logger.Infow("refund already applied, skipping",
				"refund_id", p.ID.String(),
				"order_id", o.ID)
			return nil
		}

		amount := p.RefundedTotal()

		o.RefundIDs = append(o.RefundIDs, p.ID.String())
		o.RefundedAmount = o.RefundedAmount.Add(amount)
		if o.RefundedAmount.GreaterThanOrEqual(o.TotalPrice) {
			o.PaymentStatus = types.OrderPaymentStatusRefunded
		} else {
			o.PaymentStatus = types.OrderPaymentStatusPartiallyRefunded
		}
		if err := h.orderRepo.Update(ctx, o); err != nil {
			return err
		}

		if o.CustomerID == "" || amount.IsZero() {
			return nil
		}

		c, err := h.customerRepo.Get(ctx, o.CustomerID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil
			}
			return err
		}
		c.ApplyRefund(amount)
		return h.customerRepo.Update(ctx, c)
	})
}

// handleCheckout tracks abandoned checkouts. A completed checkout marks the
// cart recovered; anything else refreshes the snapshot and pushes the
// reminder window out from the latest activity.
func (h *Handler) handleCheckout(ctx context.Context, payload []byte) error {
	var p CheckoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ierr.WithError(err).
			WithHint("Checkout payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}

	checkoutID := p.Token
	if checkoutID == "" {
		checkoutID = p.ID.String()
	}
	if checkoutID == "" {
		return ierr.NewError("checkout payload missing id").
			WithHint("Checkout events must carry the checkout token or id").
			Mark(ierr.ErrValidation)
	}

	if p.CompletedAt != nil {
		return h.markCartRecovered(ctx, checkoutID)
	}

	return h.db.WithTx(ctx, func(ctx context.Context) error {
		customerID, err := h.upsertCustomer(ctx, p.Customer)
		if err != nil {
			return err
		}

		abandonedAt := p.UpdatedAt.UTC()
		if abandonedAt.IsZero() {
			abandonedAt = time.Now().UTC()
		}

		return h.cartRepo.Upsert(ctx, &cart.AbandonedCart{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ABANDONED_CART),
			CheckoutID:  checkoutID,
			CustomerID:  customerID,
			Email:       customer.NormalizeEmail(p.Email),
			Phone:       p.Phone,
			TotalPrice:  p.TotalPrice,
			Currency:    p.Currency,
			RecoveryURL: p.AbandonedCheckoutURL,
			AbandonedAt: abandonedAt,
			RemindAt:    abandonedAt.Add(h.cfg.Webhook.CartRecoveryDelay),
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	})
}

func (h *Handler) markCartRecovered(ctx context.Context, checkoutID string) error {
	c, err := h.cartRepo.GetByCheckoutID(ctx, checkoutID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if c.RecoveredAt != nil {
		return nil
	}
	now := time.Now().UTC()
	c.RecoveredAt = &now
	return h.cartRepo.Update(ctx, c)
}

// upsertCustomer resolves or creates the customer referenced by a payload.
// Resolution tries the provider customer id first, then falls back to the
// normalized email, so a customer who existed before the store linked its
// provider account is matched and relinked instead of duplicated. Returns an
// empty id when the payload carries neither identifier, which is valid for
// guest checkouts.
func (h *Handler) upsertCustomer(ctx context.Context, p *CustomerPayload) (string, error) {
	if p == nil || (p.ID.String() == "" && p.Email == "") {
		return "", nil
	}

	existing, err := h.resolveCustomer(ctx, p)
	if err != nil {
		return "", err
	}

	if existing != nil {
		if p.ID.String() != "" {
			existing.ShopifyID = p.ID.String()
		}
		if p.Email != "" {
			existing.Email = customer.NormalizeEmail(p.Email)
		}
		if p.Phone != "" {
			existing.Phone = p.Phone
		}
		if p.FirstName != "" {
			existing.FirstName = p.FirstName
		}
		if p.LastName != "" {
			existing.LastName = p.LastName
		}
		existing.EmailOptIn = p.AcceptsMarketing
		existing.SMSOptIn = p.AcceptsSMS
		if err := h.customerRepo.Update(ctx, existing); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	c := &customer.Customer{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		ShopifyID:  p.ID.String(),
		Email:      customer.NormalizeEmail(p.Email),
		Phone:      p.Phone,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		EmailOptIn: p.AcceptsMarketing,
		SMSOptIn:   p.AcceptsSMS,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	if err := h.customerRepo.Create(ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

func (h *Handler) resolveCustomer(ctx context.Context, p *CustomerPayload) (*customer.Customer, error) {
	if p.ID.String() != "" {
		c, err := h.customerRepo.GetByShopifyID(ctx, p.ID.String())
		if err == nil {
			return c, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}
	if p.Email != "" {
		c, err := h.customerRepo.GetByEmail(ctx, customer.NormalizeEmail(p.Email))
		if err == nil {
			return c, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, nil
}

func mapFinancialStatus(s string) types.OrderPaymentStatus {
	switch s {
	case "paid":
		return types.OrderPaymentStatusPaid
	case "partially_refunded":
		return types.OrderPaymentStatusPartiallyRefunded
	case "refunded":
		return types.OrderPaymentStatusRefunded
	case "voided":
		return types.OrderPaymentStatusCancelled
	default:
		return types.OrderPaymentStatusPending
	}
}
