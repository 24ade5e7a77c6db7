package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillshare/models"
)

func newTestOTP(t *testing.T) (*OTPService, *recordingMailer, func(time.Duration)) {
	t.Helper()
	st := newTestStore(t)
	createUser(t, st, "a@x.com", "Ada")
	mail := &recordingMailer{}
	svc := NewOTPService(st, st, mail, testCost)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.generate = func() (string, error) { return "123456", nil }
	advance := func(d time.Duration) { now = now.Add(d) }
	return svc, mail, advance
}

func TestOTPVerify(t *testing.T) {
	svc, mail, _ := newTestOTP(t)
	ctx := context.Background()
	purpose := models.OTPPurposeVerifyEmail

	require.NoError(t, svc.Request(ctx, "a@x.com", purpose))
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Body, "123456")

	err := svc.Verify(ctx, "a@x.com", purpose, "000000")
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	require.NoError(t, svc.Verify(ctx, "A@x.com", purpose, "123456"))

	u, err := svc.users.GetUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	// code is single use
	err = svc.Verify(ctx, "a@x.com", purpose, "123456")
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	// verified users cannot request again
	err = svc.Request(ctx, "a@x.com", purpose)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

func TestOTPExpires(t *testing.T) {
	svc, _, advance := newTestOTP(t)
	ctx := context.Background()
	purpose := models.OTPPurposeVerifyEmail

	require.NoError(t, svc.Request(ctx, "a@x.com", purpose))
	advance(OTPTTL)

	err := svc.Verify(ctx, "a@x.com", purpose, "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	_, err = svc.codes.GetOTP(ctx, "a@x.com", purpose)
	assert.Error(t, err, "expired code is removed")
}

func TestOTPAttemptsExhausted(t *testing.T) {
	svc, _, _ := newTestOTP(t)
	ctx := context.Background()
	purpose := models.OTPPurposeVerifyEmail

	require.NoError(t, svc.Request(ctx, "a@x.com", purpose))
	for i := 1; i < OTPMaxAttempts; i++ {
		err := svc.Verify(ctx, "a@x.com", purpose, "999999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid code")
	}
	err := svc.Verify(ctx, "a@x.com", purpose, "999999")
	assert.Contains(t, err.Error(), "too many attempts")

	// even the right code is refused once the code is gone
	err = svc.Verify(ctx, "a@x.com", purpose, "123456")
	assert.Contains(t, err.Error(), "no pending code")
}

func TestOTPRequestValidation(t *testing.T) {
	svc, _, _ := newTestOTP(t)
	ctx := context.Background()

	assert.Equal(t, models.KindValidation, models.KindOf(svc.Request(ctx, "", models.OTPPurposeVerifyEmail)))
	assert.Equal(t, models.KindValidation, models.KindOf(svc.Request(ctx, "a@x.com", "reset_everything")))
	assert.Equal(t, models.KindNotFound, models.KindOf(svc.Request(ctx, "ghost@x.com", models.OTPPurposeVerifyEmail)))
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		assert.Len(t, code, OTPLength)
	}
}
