package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillshare/models"
	"skillshare/store"
)

func newTestOTPStore(t *testing.T) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewOTPStore(rdb), mr
}

func TestOTPStoreRoundTrip(t *testing.T) {
	s, _ := newTestOTPStore(t)
	ctx := context.Background()
	expires := time.Now().Add(10 * time.Minute).Truncate(time.Millisecond).UTC()

	require.NoError(t, s.SaveOTP(ctx, &models.OTP{
		Email:     "a@x.com",
		Purpose:   models.OTPPurposeVerifyEmail,
		CodeHash:  "hash",
		ExpiresAt: expires,
	}))

	got, err := s.GetOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.CodeHash)
	assert.True(t, expires.Equal(got.ExpiresAt))
	assert.Equal(t, 0, got.Attempts)

	n, err := s.IncrementOTPAttempts(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail))
	_, err = s.GetOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOTPStoreSaveResetsAttempts(t *testing.T) {
	s, _ := newTestOTPStore(t)
	ctx := context.Background()
	otp := &models.OTP{Email: "a@x.com", Purpose: models.OTPPurposeVerifyEmail, CodeHash: "one", ExpiresAt: time.Now().Add(time.Minute)}

	require.NoError(t, s.SaveOTP(ctx, otp))
	_, err := s.IncrementOTPAttempts(ctx, otp.Email, otp.Purpose)
	require.NoError(t, err)

	otp.CodeHash = "two"
	require.NoError(t, s.SaveOTP(ctx, otp))
	got, err := s.GetOTP(ctx, otp.Email, otp.Purpose)
	require.NoError(t, err)
	assert.Equal(t, "two", got.CodeHash)
	assert.Equal(t, 0, got.Attempts)
}

func TestOTPStoreExpires(t *testing.T) {
	s, mr := newTestOTPStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveOTP(ctx, &models.OTP{
		Email:     "a@x.com",
		Purpose:   models.OTPPurposeVerifyEmail,
		CodeHash:  "hash",
		ExpiresAt: time.Now().Add(time.Minute),
	}))
	mr.FastForward(2 * time.Minute)

	_, err := s.GetOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.IncrementOTPAttempts(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
