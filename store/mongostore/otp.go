package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillshare/models"
)

func (s *Store) SaveOTP(ctx context.Context, otp *models.OTP) error {
	_, err := s.otps.ReplaceOne(ctx,
		bson.M{"email": otp.Email, "purpose": otp.Purpose},
		otp,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) GetOTP(ctx context.Context, email, purpose string) (*models.OTP, error) {
	var otp models.OTP
	if err := s.otps.FindOne(ctx, bson.M{"email": email, "purpose": purpose}).Decode(&otp); err != nil {
		return nil, translate(err)
	}
	return &otp, nil
}

func (s *Store) IncrementOTPAttempts(ctx context.Context, email, purpose string) (int, error) {
	var otp models.OTP
	err := s.otps.FindOneAndUpdate(ctx,
		bson.M{"email": email, "purpose": purpose},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&otp)
	if err != nil {
		return 0, translate(err)
	}
	return otp.Attempts, nil
}

func (s *Store) DeleteOTP(ctx context.Context, email, purpose string) error {
	_, err := s.otps.DeleteOne(ctx, bson.M{"email": email, "purpose": purpose})
	return err
}
