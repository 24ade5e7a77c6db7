package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/models"
	"skillshare/store"
)

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
	_, err := s.messages.InsertOne(ctx, m)
	return translate(err)
}

func (s *Store) ListMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": a, "receiverId": b},
		bson.M{"senderId": b, "receiverId": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	msgs := []models.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Store) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res, err := s.messages.UpdateMany(ctx,
		bson.M{"receiverId": receiverID, "senderId": senderID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) Counterparts(ctx context.Context, userID string) ([]string, error) {
	sentTo, err := s.messages.Distinct(ctx, "receiverId", bson.M{"senderId": userID})
	if err != nil {
		return nil, err
	}
	receivedFrom, err := s.messages.Distinct(ctx, "senderId", bson.M{"receiverId": userID})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sentTo)+len(receivedFrom))
	out := make([]string, 0, len(sentTo)+len(receivedFrom))
	for _, v := range append(sentTo, receivedFrom...) {
		id, ok := v.(string)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (s *Store) LatestMessage(ctx context.Context, senderID, receiverID string) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	var m models.Message
	if err := s.messages.FindOne(ctx, bson.M{"senderId": senderID, "receiverId": receiverID}, opts).Decode(&m); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) CountUnread(ctx context.Context, receiverID, senderID string) (int64, error) {
	return s.messages.CountDocuments(ctx, bson.M{"receiverId": receiverID, "senderId": senderID, "isRead": false})
}
