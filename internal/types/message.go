package types

// MessageChannel is the delivery channel of an outbound or inbound message
type MessageChannel string

const (
	MessageChannelSMS      MessageChannel = "sms"
	MessageChannelWhatsApp MessageChannel = "whatsapp"
	MessageChannelEmail    MessageChannel = "email"
)

func (c MessageChannel) Validate() bool {
	switch c {
	case MessageChannelSMS, MessageChannelWhatsApp, MessageChannelEmail:
		return true
	default:
		return false
	}
}

// MessageDirection distinguishes platform-sent messages from customer replies
type MessageDirection string

const (
	MessageDirectionOutbound MessageDirection = "outbound"
	MessageDirectionInbound  MessageDirection = "inbound"
)

// MessageStatus is the internal delivery status vocabulary. Provider status
// callbacks are mapped into this set before anything is persisted.
type MessageStatus string

const (
	MessageStatusQueued      MessageStatus = "queued"
	MessageStatusSent        MessageStatus = "sent"
	MessageStatusDelivered   MessageStatus = "delivered"
	MessageStatusFailed      MessageStatus = "failed"
	MessageStatusUndelivered MessageStatus = "undelivered"
	MessageStatusReplied     MessageStatus = "replied"
	MessageStatusOptedOut    MessageStatus = "opted_out"
)

func (s MessageStatus) Validate() bool {
	switch s {
	case MessageStatusQueued, MessageStatusSent, MessageStatusDelivered,
		MessageStatusFailed, MessageStatusUndelivered, MessageStatusReplied,
		MessageStatusOptedOut:
		return true
	default:
		return false
	}
}
