package models

import "time"

const OTPPurposeVerifyEmail = "verify_email"

type OTP struct {
	Email     string    `bson:"email" json:"email"`
	Purpose   string    `bson:"purpose" json:"purpose"`
	CodeHash  string    `bson:"codeHash" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	Attempts  int       `bson:"attempts" json:"attempts"`
}
