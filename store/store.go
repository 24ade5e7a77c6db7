// Package store declares the persistence contracts. mongostore and sqlstore
// implement them against MongoDB and GORM respectively.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"skillshare/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUsers returns the users that exist among ids, keyed by id.
	GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
	// UpgradeToCreator sets role CREATOR and the profile in one atomic write.
	UpgradeToCreator(ctx context.Context, id string, profile models.CreatorProfile) (*models.User, error)
	ListCreators(ctx context.Context, f models.CreatorFilter) ([]models.User, error)
}

type MessageStore interface {
	// InsertMessage stamps CreatedAt when unset and forces IsRead=false.
	InsertMessage(ctx context.Context, m *models.Message) error
	// ListMessagesBetween returns both directions ordered by createdAt, then id.
	ListMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error)
	// MarkRead flips unread senderID->receiverID messages and reports how many changed.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
	Counterparts(ctx context.Context, userID string) ([]string, error)
	// LatestMessage returns ErrNotFound when senderID never wrote to receiverID.
	LatestMessage(ctx context.Context, senderID, receiverID string) (*models.Message, error)
	CountUnread(ctx context.Context, receiverID, senderID string) (int64, error)
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error)
	DeleteProject(ctx context.Context, id, creatorID string) error
}

type CartStore interface {
	// UpsertCartItem replaces the quantity when the project is already in the cart.
	UpsertCartItem(ctx context.Context, item *models.CartItem) error
	RemoveCartItem(ctx context.Context, userID, projectID string) error
	ListCart(ctx context.Context, userID string) ([]models.CartItem, error)
	ClearCart(ctx context.Context, userID string) error
}

type OrderStore interface {
	// PlaceOrder writes the order and empties the user's cart.
	PlaceOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
}

type PushStore interface {
	SavePushSubscription(ctx context.Context, s *models.PushSubscription) error
	ListPushSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, userID, endpoint string) error
}

// OTPStore keeps at most one pending code per (email, purpose).
type OTPStore interface {
	SaveOTP(ctx context.Context, otp *models.OTP) error
	GetOTP(ctx context.Context, email, purpose string) (*models.OTP, error)
	IncrementOTPAttempts(ctx context.Context, email, purpose string) (int, error)
	DeleteOTP(ctx context.Context, email, purpose string) error
}

type Store interface {
	UserStore
	MessageStore
	ProjectStore
	CartStore
	OrderStore
	PushStore
	OTPStore
	Close(ctx context.Context) error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageSize clamps a requested limit.
func PageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// NewID returns a time-ordered UUID so ids sort in insertion order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Now is the server clock at the precision every store can round-trip.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
