package services

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"skillshare/models"
	"skillshare/store"
)

const MinPasswordLength = 6

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// CreatorApplication is what a customer submits to become a creator.
type CreatorApplication struct {
	University   string
	Major        string
	Skills       []string
	Bio          string
	PortfolioURL string
}

// GoogleProfile is the identity Google vouched for.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Verifier sends a verification code; OTPService implements it.
type Verifier interface {
	Request(ctx context.Context, email, purpose string) error
}

type UserService struct {
	users      store.UserStore
	verifier   Verifier
	bcryptCost int
}

func NewUserService(users store.UserStore, verifier Verifier, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, verifier: verifier, bcryptCost: bcryptCost}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, models.ValidationError("a valid email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, models.ValidationError("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.InternalError("hash password", err)
	}
	hashed := string(hash)

	u := &models.User{
		ID:           email,
		Email:        email,
		PasswordHash: &hashed,
		AuthProvider: models.AuthProviderEmail,
		Name:         strings.TrimSpace(in.Name),
		Role:         models.RoleCustomer,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, models.ConflictError("an account with this email already exists")
		}
		return nil, storeError("create user", err, "")
	}

	if s.verifier != nil {
		if err := s.verifier.Request(ctx, email, models.OTPPurposeVerifyEmail); err != nil {
			log.Printf("[Users] could not send verification code to %s: %v", email, err)
		}
	}
	log.Printf("[Users] signed up %s", email)
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	u, err := s.users.GetUser(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.AuthError("invalid email or password")
	}
	if err != nil {
		return nil, storeError("load user", err, "")
	}
	if u.PasswordHash == nil {
		return nil, models.AuthError("this account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, models.AuthError("invalid email or password")
	}

	if err := s.users.TouchLastSeen(ctx, u.ID, time.Now()); err != nil {
		log.Printf("[Users] failed to update lastSeen for %s: %v", u.ID, err)
	}
	return u, nil
}

// SignInWithGoogle finds the account for the Google email or creates one.
func (s *UserService) SignInWithGoogle(ctx context.Context, p GoogleProfile) (*models.User, error) {
	email := models.NormalizeEmail(p.Email)
	if email == "" {
		return nil, models.ValidationError("email not provided by Google")
	}
	if !p.EmailVerified {
		return nil, models.AuthError("Google has not verified this email")
	}

	u, err := s.users.GetUser(ctx, email)
	switch {
	case err == nil:
		if !u.EmailVerified {
			if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
				return nil, storeError("verify email", err, "user not found")
			}
			u.EmailVerified = true
		}
		if err := s.users.TouchLastSeen(ctx, u.ID, time.Now()); err != nil {
			log.Printf("[Users] failed to update lastSeen for %s: %v", u.ID, err)
		}
		return u, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, storeError("load user", err, "")
	}

	googleID := p.Subject
	u = &models.User{
		ID:            email,
		Email:         email,
		AuthProvider:  models.AuthProviderGoogle,
		GoogleID:      &googleID,
		Name:          strings.TrimSpace(p.Name),
		Avatar:        p.Picture,
		Role:          models.RoleCustomer,
		EmailVerified: true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, storeError("create user", err, "")
	}
	log.Printf("[Users] created Google account %s", email)
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetUser(ctx, models.NormalizeEmail(id))
	if err != nil {
		return nil, storeError("load user", err, "user not found")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, models.ValidationError("name cannot be blank")
		}
		upd.Name = &name
	}
	if upd.Bio != nil {
		bio := strings.TrimSpace(*upd.Bio)
		upd.Bio = &bio
	}
	u, err := s.users.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, storeError("update profile", err, "user not found")
	}
	return u, nil
}

// UpgradeToCreator moves a user to the CREATOR role together with an
// auto-approved creator profile. Submitting again as a creator replaces the
// profile; there is no way back to CUSTOMER.
func (s *UserService) UpgradeToCreator(ctx context.Context, userID string, app CreatorApplication) (*models.User, error) {
	university := strings.TrimSpace(app.University)
	major := strings.TrimSpace(app.Major)
	skills := trimAll(app.Skills)

	if university == "" || major == "" || len(skills) == 0 {
		return nil, models.ValidationError("university, major and skills are required")
	}

	u, err := s.users.UpgradeToCreator(ctx, userID, models.CreatorProfile{
		University:   university,
		Major:        major,
		Skills:       skills,
		Bio:          strings.TrimSpace(app.Bio),
		PortfolioURL: strings.TrimSpace(app.PortfolioURL),
		Approved:     true,
	})
	if err != nil {
		return nil, storeError("upgrade role", err, "user not found")
	}
	log.Printf("[Users] %s is now a creator", userID)
	return u, nil
}

// SplitSkills accepts "go, design" as well as a list.
func SplitSkills(raw string) []string {
	return trimAll(strings.Split(raw, ","))
}
