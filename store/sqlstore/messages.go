package sqlstore

import (
	"context"
	"time"

	"skillshare/models"
	"skillshare/store"
)

type messageRow struct {
	ID          string    `gorm:"primaryKey;size:36"`
	SenderID    string    `gorm:"size:320;not null;index:idx_messages_pair,priority:1"`
	ReceiverID  string    `gorm:"size:320;not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1"`
	Content     string    `gorm:"type:text;not null"`
	Type        string    `gorm:"size:16;not null"`
	Attachments []string  `gorm:"serializer:json;type:text"`
	IsRead      bool      `gorm:"not null;index:idx_messages_unread,priority:2"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (messageRow) TableName() string { return "messages" }

func (r *messageRow) toModel() models.Message {
	return models.Message{
		ID:          r.ID,
		SenderID:    r.SenderID,
		ReceiverID:  r.ReceiverID,
		Content:     r.Content,
		Type:        r.Type,
		Attachments: r.Attachments,
		IsRead:      r.IsRead,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (s *Store) InsertMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = store.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = store.Now()
	}
	if m.Type == "" {
		m.Type = models.MessageTypeText
	}
	m.IsRead = false

	row := &messageRow{
		ID:          m.ID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Content:     m.Content,
		Type:        m.Type,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
	}
	return translate(s.db.WithContext(ctx).Create(row).Error)
}

func (s *Store) ListMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))", a, b, b, a).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&messageRow{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *Store) Counterparts(ctx context.Context, userID string) ([]string, error) {
	db := s.db.WithContext(ctx)

	var sentTo, receivedFrom []string
	if err := db.Model(&messageRow{}).Where("sender_id = ?", userID).
		Distinct().Order("receiver_id").Pluck("receiver_id", &sentTo).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&messageRow{}).Where("receiver_id = ?", userID).
		Distinct().Order("sender_id").Pluck("sender_id", &receivedFrom).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sentTo)+len(receivedFrom))
	out := make([]string, 0, len(sentTo)+len(receivedFrom))
	for _, id := range append(sentTo, receivedFrom...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (s *Store) LatestMessage(ctx context.Context, senderID, receiverID string) (*models.Message, error) {
	var row messageRow
	err := s.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Order("created_at DESC").Order("id DESC").
		Take(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	m := row.toModel()
	return &m, nil
}

func (s *Store) CountUnread(ctx context.Context, receiverID, senderID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&messageRow{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Count(&n).Error
	return n, err
}
