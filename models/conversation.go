package models

import "time"

// ConversationSummary is derived from Message rows on every query and never stored.
type ConversationSummary struct {
	OtherUserID     string    `json:"otherUserId"`
	OtherUserName   string    `json:"otherUserName"`
	OtherUserAvatar string    `json:"otherUserAvatar"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int64     `json:"unreadCount"`
}

// ThreadMessage is a message as shown inside an opened conversation.
type ThreadMessage struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	ReceiverID  string    `json:"receiverId"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	Attachments []string  `json:"attachments,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsRead      bool      `json:"isRead"`
}
