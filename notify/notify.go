// Package notify delivers user-addressed events to whatever channels are
// configured: the WebSocket hub, Web Push, or both.
package notify

import (
	"skillshare/models"
)

const (
	EventMessageNew          = "message:new"
	EventMessageRead         = "message:read"
	EventConversationUpdated = "conversation:updated"
	EventTyping              = "typing"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewMessage is the payload of message:new.
type NewMessage struct {
	Message    models.Message `json:"message"`
	SenderName string         `json:"senderName"`
}

// ReadReceipt is the payload of message:read, sent to the author of the messages.
type ReadReceipt struct {
	ReaderID string `json:"readerId"`
	Count    int64  `json:"count"`
}

// ConversationUpdate is the payload of conversation:updated.
type ConversationUpdate struct {
	OtherUserID string `json:"otherUserId"`
}

// Publisher must not block the caller; delivery is best effort.
type Publisher interface {
	Publish(userID string, ev Event)
}

// Fanout publishes every event to each of its publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(userID string, ev Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(userID, ev)
		}
	}
}

type Nop struct{}

func (Nop) Publish(string, Event) {}
