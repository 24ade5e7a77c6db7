package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/models"
	"skillshare/store"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = store.Now()
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = u.CreatedAt
	}
	_, err := s.users.InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if len(set) == 0 {
		return s.GetUser(ctx, id)
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"emailVerified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastSeen": at.UTC()}})
	return err
}

// UpgradeToCreator writes role and profile in a single document update.
func (s *Store) UpgradeToCreator(ctx context.Context, id string, profile models.CreatorProfile) (*models.User, error) {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = store.Now()
	}
	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"role":           models.RoleCreator,
			"creatorProfile": profile,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListCreators(ctx context.Context, f models.CreatorFilter) ([]models.User, error) {
	filter := bson.M{"role": models.RoleCreator}
	if f.Skill != "" {
		filter["creatorProfile.skills"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Skill) + "$", Options: "i"}
	}
	if f.University != "" {
		filter["creatorProfile.university"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.University), Options: "i"}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "creatorProfile.createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(store.PageSize(f.Limit))).
		SetSkip(int64(f.Offset))
	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
