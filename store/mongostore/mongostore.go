// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/store"
)

type Store struct {
	client *mongo.Client

	users     *mongo.Collection
	messages  *mongo.Collection
	projects  *mongo.Collection
	cartItems *mongo.Collection
	orders    *mongo.Collection
	pushSubs  *mongo.Collection
	otps      *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// New binds the collections of dbName and makes sure their indexes exist.
func New(ctx context.Context, client *mongo.Client, dbName string) (*Store, error) {
	db := client.Database(dbName)
	s := &Store{
		client:    client,
		users:     db.Collection("users"),
		messages:  db.Collection("messages"),
		projects:  db.Collection("projects"),
		cartItems: db.Collection("cart_items"),
		orders:    db.Collection("orders"),
		pushSubs:  db.Collection("push_subscriptions"),
		otps:      db.Collection("otps"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "creatorProfile.createdAt", Value: -1}}},
		},
		s.messages: {
			{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "isRead", Value: 1}}},
		},
		s.projects: {
			{Keys: bson.D{{Key: "creatorId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		s.cartItems: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "projectId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.orders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.pushSubs: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.otps: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "purpose", Value: 1}}, Options: options.Index().SetUnique(true)},
			// mongod removes codes once expiresAt has passed
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}
