package models

import "time"

type Project struct {
	ID          string    `bson:"_id" json:"id"`
	CreatorID   string    `bson:"creatorId" json:"creatorId"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category,omitempty" json:"category"`
	PriceCents  int64     `bson:"priceCents" json:"priceCents"`
	Media       []string  `bson:"media" json:"media"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

type ProjectFilter struct {
	CreatorID string
	Category  string
	Query     string
	Limit     int
	Offset    int
}
