package models

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message is a direct message. Only IsRead changes after creation.
type Message struct {
	ID          string    `bson:"_id" json:"id"`
	SenderID    string    `bson:"senderId" json:"senderId"`
	ReceiverID  string    `bson:"receiverId" json:"receiverId"`
	Content     string    `bson:"content" json:"content"`
	Type        string    `bson:"type" json:"type"`
	Attachments []string  `bson:"attachments,omitempty" json:"attachments,omitempty"`
	IsRead      bool      `bson:"isRead" json:"isRead"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Counterpart returns the participant that is not userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
