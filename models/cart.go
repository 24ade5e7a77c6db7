package models

import "time"

type CartItem struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	ProjectID string    `bson:"projectId" json:"projectId"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"addedAt" json:"addedAt"`
}

const OrderStatusPlaced = "PLACED"

// OrderItem snapshots the project at checkout time.
type OrderItem struct {
	ProjectID  string `bson:"projectId" json:"projectId"`
	Title      string `bson:"title" json:"title"`
	PriceCents int64  `bson:"priceCents" json:"priceCents"`
	Quantity   int    `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID         string      `bson:"_id" json:"id"`
	UserID     string      `bson:"userId" json:"userId"`
	Items      []OrderItem `bson:"items" json:"items"`
	TotalCents int64       `bson:"totalCents" json:"totalCents"`
	Status     string      `bson:"status" json:"status"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt"`
}
