package models

// MessageStatus represents the delivery status of an outbound message.
type MessageStatus string

// Message status values emitted by messaging services.
const (
	StatusTypeSent      MessageStatus = "sent"
	StatusTypeDelivered MessageStatus = "delivered"
	StatusTypeRead      MessageStatus = "read"
	StatusTypeFailed    MessageStatus = "failed"
)

// Receipt records a status change for an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response is an inbound chat event as delivered by a messaging service.
// MessageID is the transport's identifier for the message and feeds the loop
// guard; FromMe marks events originating from the bot's own account (the
// transport echoes sent messages back as new events).
type Response struct {
	ChatID     string `json:"chat_id"`
	Sender     string `json:"sender"`
	SenderName string `json:"sender_name,omitempty"`
	Body       string `json:"body"`
	MessageID  string `json:"message_id"`
	FromMe     bool   `json:"from_me"`
	Time       int64  `json:"time"`
}
