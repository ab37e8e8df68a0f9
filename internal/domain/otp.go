package domain

import "time"

// OTPChannel is how a code reaches the user
type OTPChannel string

const (
	OTPChannelSMS   OTPChannel = "SMS"
	OTPChannelEmail OTPChannel = "EMAIL"
)

// OTPPurpose scopes a code to one flow so it cannot be replayed in another
type OTPPurpose string

const (
	OTPPurposeRegistration      OTPPurpose = "REGISTRATION"
	OTPPurposeLogin             OTPPurpose = "LOGIN"
	OTPPurposeEmailVerification OTPPurpose = "EMAIL_VERIFICATION"
)

// OTP Model. Only the bcrypt hash of the code is stored.
type OTP struct {
	ID         uint       `gorm:"primaryKey"`
	Identifier string     `gorm:"size:191;not null;index:idx_otp_lookup"` // Mobile number or email
	Channel    OTPChannel `gorm:"size:10;not null"`
	Purpose    OTPPurpose `gorm:"size:30;not null;index:idx_otp_lookup"`
	CodeHash   string     `gorm:"size:255;not null"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	Attempts   int        `gorm:"not null;default:0"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the code is past its expiry at now
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
