package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/models"
	"skillshare/store"
)

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = store.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = store.Now()
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	_, err := s.projects.InsertOne(ctx, p)
	return translate(err)
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	filter := bson.M{}
	if f.CreatorID != "" {
		filter["creatorId"] = f.CreatorID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(store.PageSize(f.Limit))).
		SetSkip(int64(f.Offset))
	cursor, err := s.projects.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) DeleteProject(ctx context.Context, id, creatorID string) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id, "creatorId": creatorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
