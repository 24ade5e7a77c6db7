package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/models"
	"skillshare/store"
)

func (s *Store) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = store.Now()
	}
	_, err := s.pushSubs.UpdateOne(ctx,
		bson.M{"userId": sub.UserID, "endpoint": sub.Endpoint},
		bson.M{
			"$set":         bson.M{"p256dh": sub.P256dh, "auth": sub.Auth},
			"$setOnInsert": bson.M{"createdAt": sub.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) ListPushSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	cursor, err := s.pushSubs.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *Store) DeletePushSubscription(ctx context.Context, userID, endpoint string) error {
	_, err := s.pushSubs.DeleteOne(ctx, bson.M{"userId": userID, "endpoint": endpoint})
	return err
}
