package webhook

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/loopreach/loopreach/internal/domain/campaign"
	"github.com/loopreach/loopreach/internal/domain/customer"
	"github.com/loopreach/loopreach/internal/domain/message"
	ierr "github.com/loopreach/loopreach/internal/errors"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/postgres"
	"github.com/loopreach/loopreach/internal/types"
)

// statusRank orders the delivery lifecycle so an out-of-order receipt never
// downgrades a message. Terminal customer actions (replied, opted out)
// outrank carrier receipts.
var statusRank = map[types.MessageStatus]int{
	types.MessageStatusQueued:      0,
	types.MessageStatusSent:        1,
	types.MessageStatusDelivered:   2,
	types.MessageStatusFailed:      2,
	types.MessageStatusUndelivered: 2,
	types.MessageStatusReplied:     3,
	types.MessageStatusOptedOut:    3,
}

// Handler processes telephony callbacks: delivery receipts for outbound
// messages and inbound customer replies. Campaign counters are recomputed
// from the message table after every applied update, never incremented, so a
// redelivered callback cannot skew them.
type Handler struct {
	db           postgres.IClient
	messageRepo  message.Repository
	customerRepo customer.Repository
	campaignRepo campaign.Repository
	logger       *logger.Logger
}

func NewHandler(
	db postgres.IClient,
	messageRepo message.Repository,
	customerRepo customer.Repository,
	campaignRepo campaign.Repository,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		db:           db,
		messageRepo:  messageRepo,
		customerRepo: customerRepo,
		campaignRepo: campaignRepo,
		logger:       logger,
	}
}

// HandleCallback dispatches a form-encoded callback. Requests carrying a
// MessageStatus field are delivery receipts; requests carrying a Body are
// inbound replies.
func (h *Handler) HandleCallback(ctx context.Context, form url.Values) error {
	if form.Get("MessageStatus") != "" || form.Get("SmsStatus") != "" {
		return h.handleStatusReceipt(ctx, form)
	}
	if form.Get("Body") != "" {
		return h.handleInboundReply(ctx, form)
	}
	return ierr.NewError("unrecognized callback shape").
		WithHint("Callback carries neither a message status nor a body").
		Mark(ierr.ErrValidation)
}

func (h *Handler) handleStatusReceipt(ctx context.Context, form url.Values) error {
	sid := form.Get("MessageSid")
	if sid == "" {
		sid = form.Get("SmsSid")
	}
	if sid == "" {
		return ierr.NewError("status receipt missing message sid").
			WithHint("Delivery receipts must carry the provider message SID").
			Mark(ierr.ErrValidation)
	}

	providerStatus := form.Get("MessageStatus")
	if providerStatus == "" {
		providerStatus = form.Get("SmsStatus")
	}
	status, ok := mapProviderStatus(providerStatus)
	if !ok {
		h.logger.Warnw("ignoring unknown provider message status",
			"provider_sid", sid,
			"provider_status", providerStatus)
		return nil
	}

	m, err := h.messageRepo.GetByProviderSID(ctx, sid)
	if err != nil {
		// Receipts can outlive their message rows (retention, test sends).
		// Acknowledging stops the provider from redelivering forever.
		if ierr.IsNotFound(err) {
			h.logger.Warnw("receipt for unknown message, ignoring", "provider_sid", sid)
			return nil
		}
		return err
	}

	if statusRank[status] < statusRank[m.Status] {
		h.logger.Debugw("ignoring out-of-order status receipt",
			"message_id", m.ID,
			"current", m.Status,
			"received", status)
		return nil
	}

	m.Status = status
	if status == types.MessageStatusDelivered && m.DeliveredAt == nil {
		now := time.Now().UTC()
		m.DeliveredAt = &now
	}
	if status == types.MessageStatusFailed || status == types.MessageStatusUndelivered {
		m.ErrorCode = form.Get("ErrorCode")
	}
	if err := h.messageRepo.Update(ctx, m); err != nil {
		return err
	}

	return h.recountCampaign(ctx, m.CampaignID)
}

// handleInboundReply records a customer response. A stop keyword opts the
// customer out of the channel in the same transaction as the message row.
func (h *Handler) handleInboundReply(ctx context.Context, form url.Values) error {
	from := form.Get("From")
	if from == "" {
		return ierr.NewError("inbound reply missing sender").
			WithHint("Inbound messages must carry the From number").
			Mark(ierr.ErrValidation)
	}
	body := form.Get("Body")
	channel := channelFromAddress(from)

	status := types.MessageStatusReplied
	if isStopKeyword(body) {
		status = types.MessageStatusOptedOut
	}

	return h.db.WithTx(ctx, func(ctx context.Context) error {
		var customerID, campaignID string

		cust, err := h.customerRepo.GetByPhone(ctx, normalizePhone(from))
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if cust != nil {
			customerID = cust.ID

			// Attribute the reply to the latest outbound send
			orig, err := h.latestOutbound(ctx, cust.ID, channel)
			if err != nil {
				return err
			}
			if orig != nil {
				campaignID = orig.CampaignID
				if statusRank[status] >= statusRank[orig.Status] {
					orig.Status = status
					if err := h.messageRepo.Update(ctx, orig); err != nil {
						return err
					}
				}
			}

			if status == types.MessageStatusOptedOut && cust.SMSOptIn {
				cust.SMSOptIn = false
				if err := h.customerRepo.Update(ctx, cust); err != nil {
					return err
				}
			}
		}

		// The inbound row carries no campaign id: the reply is attributed to
		// the campaign through the outbound message it answers, and a second
		// campaign-tagged row would double-count in the recount.
		in := &message.Message{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MESSAGE),
			CustomerID:  customerID,
			Channel:     channel,
			Direction:   types.MessageDirectionInbound,
			Status:      status,
			ProviderSID: form.Get("MessageSid"),
			Body:        body,
			SentAt:      time.Now().UTC(),
			BaseModel:   types.GetDefaultBaseModel(ctx),
		}
		if err := h.messageRepo.Create(ctx, in); err != nil {
			return err
		}

		return h.recountCampaign(ctx, campaignID)
	})
}

// latestOutbound finds the most recent outbound send to the customer within
// the reply attribution window.
func (h *Handler) latestOutbound(ctx context.Context, customerID string, channel types.MessageChannel) (*message.Message, error) {
	since := time.Now().UTC().Add(-replyAttributionWindow)
	m, err := h.messageRepo.GetLatestOutbound(ctx, customerID, channel, since)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

const replyAttributionWindow = 7 * 24 * time.Hour

func (h *Handler) recountCampaign(ctx context.Context, campaignID string) error {
	if campaignID == "" {
		return nil
	}
	counts, err := h.messageRepo.CountByStatusForCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	return h.campaignRepo.UpdateStats(ctx, campaignID, campaign.StatsFromCounts(counts))
}

func mapProviderStatus(s string) (types.MessageStatus, bool) {
	switch strings.ToLower(s) {
	case "queued", "accepted", "scheduled":
		return types.MessageStatusQueued, true
	case "sent", "sending":
		return types.MessageStatusSent, true
	case "delivered", "read":
		return types.MessageStatusDelivered, true
	case "failed", "canceled":
		return types.MessageStatusFailed, true
	case "undelivered":
		return types.MessageStatusUndelivered, true
	default:
		return "", false
	}
}

var stopKeywords = []string{"stop", "stopall", "unsubscribe", "cancel", "end", "quit"}

func isStopKeyword(body string) bool {
	normalized := strings.ToLower(strings.TrimSpace(body))
	for _, kw := range stopKeywords {
		if normalized == kw {
			return true
		}
	}
	return false
}

// channelFromAddress distinguishes whatsapp-prefixed addresses from plain
// phone numbers
func channelFromAddress(addr string) types.MessageChannel {
	if strings.HasPrefix(strings.ToLower(addr), "whatsapp:") {
		return types.MessageChannelWhatsApp
	}
	return types.MessageChannelSMS
}

func normalizePhone(addr string) string {
	return strings.TrimPrefix(strings.ToLower(addr), "whatsapp:")
}
