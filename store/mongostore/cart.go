package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/models"
	"skillshare/store"
)

func (s *Store) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = store.NewID()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = store.Now()
	}
	var stored models.CartItem
	err := s.cartItems.FindOneAndUpdate(ctx,
		bson.M{"userId": item.UserID, "projectId": item.ProjectID},
		bson.M{
			"$set":         bson.M{"quantity": item.Quantity},
			"$setOnInsert": bson.M{"_id": item.ID, "addedAt": item.AddedAt},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return translate(err)
	}
	*item = stored
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, userID, projectID string) error {
	res, err := s.cartItems.DeleteOne(ctx, bson.M{"userId": userID, "projectId": projectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.cartItems.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	items := []models.CartItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.cartItems.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// PlaceOrder inserts the order before clearing the cart. A standalone mongod
// has no multi-document transactions, so a crash in between leaves the cart
// intact and the order placed.
func (s *Store) PlaceOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = store.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = store.Now()
	}
	if _, err := s.orders.InsertOne(ctx, o); err != nil {
		return translate(err)
	}
	return s.ClearCart(ctx, o.UserID)
}

func (s *Store) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.orders.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
