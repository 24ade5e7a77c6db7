package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleCreator  Role = "CREATOR"
)

const (
	AuthProviderEmail  = "email"
	AuthProviderGoogle = "google"
)

// FallbackAvatar is served for users that never uploaded one.
const FallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

// User is keyed by its lower-cased email; ID and Email always hold the same value.
type User struct {
	ID            string          `bson:"_id" json:"id"`
	Email         string          `bson:"email" json:"email"`
	PasswordHash  *string         `bson:"passwordHash,omitempty" json:"-"`
	AuthProvider  string          `bson:"authProvider" json:"authProvider"`
	GoogleID      *string         `bson:"googleId,omitempty" json:"-"`
	Name          string          `bson:"name" json:"name"`
	Avatar        string          `bson:"avatar" json:"avatar"`
	Bio           string          `bson:"bio" json:"bio"`
	Role          Role            `bson:"role" json:"role"`
	EmailVerified bool            `bson:"emailVerified" json:"emailVerified"`
	Creator       *CreatorProfile `bson:"creatorProfile,omitempty" json:"creatorProfile,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	LastSeen      time.Time       `bson:"lastSeen" json:"lastSeen"`
}

// DisplayName falls back to the local part of the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

func (u *User) AvatarOrFallback() string {
	if u.Avatar == "" {
		return FallbackAvatar
	}
	return u.Avatar
}

func (u *User) IsCreator() bool {
	return u.Role == RoleCreator
}

// CreatorProfile is written together with the CREATOR role.
type CreatorProfile struct {
	University   string    `bson:"university" json:"university"`
	Major        string    `bson:"major" json:"major"`
	Skills       []string  `bson:"skills" json:"skills"`
	Bio          string    `bson:"bio" json:"bio"`
	PortfolioURL string    `bson:"portfolioUrl" json:"portfolioUrl"`
	Approved     bool      `bson:"approved" json:"approved"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Avatar *string
}

type CreatorFilter struct {
	Skill      string
	University string
	Limit      int
	Offset     int
}

// NormalizeEmail lower-cases and trims an address so it can serve as a user id.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
