// Package cache keeps short-lived state in Redis.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"skillshare/models"
	"skillshare/store"
)

// OTPStore keeps one hash per pending code. Redis expires the key together
// with the code, so nothing has to sweep stale entries.
type OTPStore struct {
	rdb *redis.Client
}

var _ store.OTPStore = (*OTPStore)(nil)

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func otpKey(email, purpose string) string {
	return "otp:" + purpose + ":" + email
}

func (s *OTPStore) SaveOTP(ctx context.Context, otp *models.OTP) error {
	key := otpKey(otp.Email, otp.Purpose)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"codeHash", otp.CodeHash,
			"expiresAt", strconv.FormatInt(otp.ExpiresAt.UnixMilli(), 10),
			"attempts", otp.Attempts,
		)
		pipe.PExpireAt(ctx, key, otp.ExpiresAt)
		return nil
	})
	return err
}

func (s *OTPStore) GetOTP(ctx context.Context, email, purpose string) (*models.OTP, error) {
	fields, err := s.rdb.HGetAll(ctx, otpKey(email, purpose)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, store.ErrNotFound
	}

	expiresMs, err := strconv.ParseInt(fields["expiresAt"], 10, 64)
	if err != nil {
		return nil, err
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, err
	}
	return &models.OTP{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  fields["codeHash"],
		ExpiresAt: time.UnixMilli(expiresMs).UTC(),
		Attempts:  attempts,
	}, nil
}

func (s *OTPStore) IncrementOTPAttempts(ctx context.Context, email, purpose string) (int, error) {
	key := otpKey(email, purpose)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, store.ErrNotFound
	}
	attempts, err := s.rdb.HIncrBy(ctx, key, "attempts", 1).Result()
	return int(attempts), err
}

func (s *OTPStore) DeleteOTP(ctx context.Context, email, purpose string) error {
	return s.rdb.Del(ctx, otpKey(email, purpose)).Err()
}
