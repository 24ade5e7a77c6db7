package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillshare/models"
)

type otpRow struct {
	Email     string    `gorm:"primaryKey;size:320"`
	Purpose   string    `gorm:"primaryKey;size:32"`
	CodeHash  string    `gorm:"size:255;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Attempts  int       `gorm:"not null"`
}

func (otpRow) TableName() string { return "otps" }

func (s *Store) SaveOTP(ctx context.Context, otp *models.OTP) error {
	row := &otpRow{
		Email:     otp.Email,
		Purpose:   otp.Purpose,
		CodeHash:  otp.CodeHash,
		ExpiresAt: otp.ExpiresAt.UTC(),
		Attempts:  otp.Attempts,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

func (s *Store) GetOTP(ctx context.Context, email, purpose string) (*models.OTP, error) {
	var row otpRow
	if err := s.db.WithContext(ctx).Where("email = ? AND purpose = ?", email, purpose).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &models.OTP{
		Email:     row.Email,
		Purpose:   row.Purpose,
		CodeHash:  row.CodeHash,
		ExpiresAt: row.ExpiresAt.UTC(),
		Attempts:  row.Attempts,
	}, nil
}

func (s *Store) IncrementOTPAttempts(ctx context.Context, email, purpose string) (int, error) {
	var attempts int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&otpRow{}).
			Where("email = ? AND purpose = ?", email, purpose).
			Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return err
		}
		var row otpRow
		if err := tx.Where("email = ? AND purpose = ?", email, purpose).Take(&row).Error; err != nil {
			return err
		}
		attempts = row.Attempts
		return nil
	})
	return attempts, translate(err)
}

func (s *Store) DeleteOTP(ctx context.Context, email, purpose string) error {
	return s.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, purpose).
		Delete(&otpRow{}).Error
}
