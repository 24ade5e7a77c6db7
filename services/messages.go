package services

import (
	"context"
	"log"
	"strings"

	"skillshare/models"
	"skillshare/notify"
	"skillshare/store"
)

const (
	MaxMessageLength = 4000
	MaxAttachments   = 10
)

type SendMessageInput struct {
	SenderID    string
	ReceiverID  string
	Content     string
	Type        string
	Attachments []string
}

type MessageService struct {
	messages store.MessageStore
	users    store.UserStore
	events   notify.Publisher
}

func NewMessageService(messages store.MessageStore, users store.UserStore, events notify.Publisher) *MessageService {
	if events == nil {
		events = notify.Nop{}
	}
	return &MessageService{messages: messages, users: users, events: events}
}

// CreateMessage stores a new unread message from sender to receiver.
func (s *MessageService) CreateMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	senderID := strings.TrimSpace(in.SenderID)
	receiverID := models.NormalizeEmail(in.ReceiverID)
	content := strings.TrimSpace(in.Content)
	msgType := strings.TrimSpace(in.Type)
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	switch {
	case senderID == "":
		return nil, models.ValidationError("senderId is required")
	case receiverID == "":
		return nil, models.ValidationError("receiverId is required")
	case content == "":
		return nil, models.ValidationError("content is required")
	case !models.ValidMessageType(msgType):
		return nil, models.ValidationError("type must be one of text, image, file")
	case senderID == receiverID:
		return nil, models.ValidationError("cannot send a message to yourself")
	case len([]rune(content)) > MaxMessageLength:
		return nil, models.ValidationError("content must be at most %d characters", MaxMessageLength)
	}
	attachments := trimAll(in.Attachments)
	if len(attachments) > MaxAttachments {
		return nil, models.ValidationError("at most %d attachments are allowed", MaxAttachments)
	}

	if _, err := s.users.GetUser(ctx, receiverID); err != nil {
		return nil, storeError("load receiver", err, "receiver not found")
	}

	msg := &models.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		Type:        msgType,
		Attachments: attachments,
	}
	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, storeError("insert message", err, "")
	}

	senderName := senderID
	if sender, err := s.users.GetUser(ctx, senderID); err == nil {
		senderName = sender.DisplayName()
	}

	s.events.Publish(receiverID, notify.Event{
		Type:    notify.EventMessageNew,
		Payload: notify.NewMessage{Message: *msg, SenderName: senderName},
	})
	s.events.Publish(receiverID, notify.Event{
		Type:    notify.EventConversationUpdated,
		Payload: notify.ConversationUpdate{OtherUserID: senderID},
	})
	s.events.Publish(senderID, notify.Event{
		Type:    notify.EventConversationUpdated,
		Payload: notify.ConversationUpdate{OtherUserID: receiverID},
	})

	log.Printf("[Messages] %s -> %s (%s)", senderID, receiverID, msg.ID)
	return msg, nil
}

// ListMessagesBetween opens the thread: messages from otherUserID to userID
// are marked read before the thread is loaded, so the caller never sees them
// unread again.
func (s *MessageService) ListMessagesBetween(ctx context.Context, userID, otherUserID string) ([]models.ThreadMessage, error) {
	otherUserID = models.NormalizeEmail(otherUserID)
	if otherUserID == "" {
		return nil, models.ValidationError("otherUserId is required")
	}

	if _, err := s.MarkRead(ctx, userID, otherUserID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListMessagesBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, storeError("list messages", err, "")
	}

	users, err := s.users.GetUsers(ctx, []string{userID, otherUserID})
	if err != nil {
		return nil, storeError("load participants", err, "")
	}

	thread := make([]models.ThreadMessage, len(msgs))
	for i, m := range msgs {
		senderName := m.SenderID
		if u, ok := users[m.SenderID]; ok {
			senderName = u.DisplayName()
		}
		thread[i] = models.ThreadMessage{
			ID:          m.ID,
			SenderID:    m.SenderID,
			SenderName:  senderName,
			ReceiverID:  m.ReceiverID,
			Content:     m.Content,
			Type:        m.Type,
			Attachments: m.Attachments,
			Timestamp:   m.CreatedAt,
			IsRead:      m.IsRead,
		}
	}
	return thread, nil
}

// MarkRead flips every unread senderID->receiverID message and reports how
// many changed. Calling it again is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	senderID = models.NormalizeEmail(senderID)
	if receiverID == "" || senderID == "" {
		return 0, models.ValidationError("both participants are required")
	}

	n, err := s.messages.MarkRead(ctx, receiverID, senderID)
	if err != nil {
		return 0, storeError("mark read", err, "")
	}
	if n > 0 {
		s.events.Publish(senderID, notify.Event{
			Type:    notify.EventMessageRead,
			Payload: notify.ReadReceipt{ReaderID: receiverID, Count: n},
		})
		s.events.Publish(receiverID, notify.Event{
			Type:    notify.EventConversationUpdated,
			Payload: notify.ConversationUpdate{OtherUserID: senderID},
		})
	}
	return n, nil
}
