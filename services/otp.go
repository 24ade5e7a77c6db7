package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"skillshare/mailer"
	"skillshare/models"
	"skillshare/store"
)

const (
	OTPLength      = 6
	OTPTTL         = 10 * time.Minute
	OTPMaxAttempts = 5
)

type OTPService struct {
	codes      store.OTPStore
	users      store.UserStore
	mail       mailer.Mailer
	bcryptCost int

	now      func() time.Time
	generate func() (string, error)
}

func NewOTPService(codes store.OTPStore, users store.UserStore, mail mailer.Mailer, bcryptCost int) *OTPService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &OTPService{
		codes:      codes,
		users:      users,
		mail:       mail,
		bcryptCost: bcryptCost,
		now:        time.Now,
		generate:   randomCode,
	}
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

func validPurpose(purpose string) bool {
	return purpose == models.OTPPurposeVerifyEmail
}

// Request issues a fresh code, replacing any pending one, and mails it.
func (s *OTPService) Request(ctx context.Context, email, purpose string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.ValidationError("email is required")
	}
	if !validPurpose(purpose) {
		return models.ValidationError("unknown purpose %q", purpose)
	}

	u, err := s.users.GetUser(ctx, email)
	if err != nil {
		return storeError("load user", err, "user not found")
	}
	if u.EmailVerified {
		return models.ValidationError("email is already verified")
	}

	code, err := s.generate()
	if err != nil {
		return models.InternalError("generate code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.bcryptCost)
	if err != nil {
		return models.InternalError("hash code", err)
	}

	err = s.codes.SaveOTP(ctx, &models.OTP{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(OTPTTL).UTC(),
	})
	if err != nil {
		return storeError("save code", err, "")
	}

	body := fmt.Sprintf("Your SkillShare verification code is %s.\nIt expires in %d minutes.", code, int(OTPTTL.Minutes()))
	if err := s.mail.Send(ctx, email, "Your SkillShare verification code", body); err != nil {
		return models.InternalError("send code", err)
	}
	log.Printf("[OTP] issued %s code for %s", purpose, email)
	return nil
}

// Verify checks code against the pending one. Expired or exhausted codes are
// removed; a wrong guess counts as an attempt.
func (s *OTPService) Verify(ctx context.Context, email, purpose, code string) error {
	email = models.NormalizeEmail(email)
	if email == "" || code == "" {
		return models.ValidationError("email and code are required")
	}
	if !validPurpose(purpose) {
		return models.ValidationError("unknown purpose %q", purpose)
	}

	otp, err := s.codes.GetOTP(ctx, email, purpose)
	if errors.Is(err, store.ErrNotFound) {
		return models.ValidationError("no pending code; request a new one")
	}
	if err != nil {
		return storeError("load code", err, "")
	}

	if !s.now().Before(otp.ExpiresAt) {
		s.discard(ctx, email, purpose)
		return models.ValidationError("code expired; request a new one")
	}
	if otp.Attempts >= OTPMaxAttempts {
		s.discard(ctx, email, purpose)
		return models.ValidationError("too many attempts; request a new one")
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		attempts, err := s.codes.IncrementOTPAttempts(ctx, email, purpose)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return storeError("count attempt", err, "")
		}
		if attempts >= OTPMaxAttempts {
			s.discard(ctx, email, purpose)
			return models.ValidationError("too many attempts; request a new one")
		}
		return models.ValidationError("invalid code")
	}

	s.discard(ctx, email, purpose)
	if purpose == models.OTPPurposeVerifyEmail {
		if err := s.users.MarkEmailVerified(ctx, email); err != nil {
			return storeError("verify email", err, "user not found")
		}
	}
	log.Printf("[OTP] verified %s for %s", purpose, email)
	return nil
}

func (s *OTPService) discard(ctx context.Context, email, purpose string) {
	if err := s.codes.DeleteOTP(ctx, email, purpose); err != nil {
		log.Printf("[OTP] failed to delete code for %s: %v", email, err)
	}
}
