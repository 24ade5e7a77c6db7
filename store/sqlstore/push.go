package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"skillshare/models"
	"skillshare/store"
)

type pushSubscriptionRow struct {
	UserID    string `gorm:"primaryKey;size:320"`
	Endpoint  string `gorm:"primaryKey;size:1024"`
	P256dh    string `gorm:"size:255;not null"`
	Auth      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

func (pushSubscriptionRow) TableName() string { return "push_subscriptions" }

func (s *Store) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = store.Now()
	}
	row := &pushSubscriptionRow{
		UserID:    sub.UserID,
		Endpoint:  sub.Endpoint,
		P256dh:    sub.P256dh,
		Auth:      sub.Auth,
		CreatedAt: sub.CreatedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(row).Error
}

func (s *Store) ListPushSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	var rows []pushSubscriptionRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.PushSubscription, len(rows))
	for i, r := range rows {
		out[i] = models.PushSubscription{
			UserID:    r.UserID,
			Endpoint:  r.Endpoint,
			P256dh:    r.P256dh,
			Auth:      r.Auth,
			CreatedAt: r.CreatedAt.UTC(),
		}
	}
	return out, nil
}

func (s *Store) DeletePushSubscription(ctx context.Context, userID, endpoint string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&pushSubscriptionRow{}).Error
}
