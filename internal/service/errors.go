package service

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors returned by services. The api package maps them to HTTP responses.
var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("already exists")
	ErrValidation            = errors.New("validation failed")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrForbidden             = errors.New("forbidden")
	ErrUserNotActive         = errors.New("user is not active")
	ErrOTPInvalid            = errors.New("invalid otp")
	ErrOTPExpired            = errors.New("otp expired")
	ErrOTPAttemptsExceeded   = errors.New("otp attempts exceeded")
	ErrOTPCooldown           = errors.New("otp requested too recently")
	ErrAccountNotLinked      = errors.New("no account linked to this identity")
	ErrBrandInactive         = errors.New("brand is not active")
	ErrInsufficientBalance   = errors.New("insufficient coin balance")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrWelcomeBonusGranted   = errors.New("welcome bonus already granted")
	ErrTooManyPending        = errors.New("too many pending requests")
	ErrNoPayoutDue           = errors.New("transaction has no redeemed coins to pay")
	ErrPaymentDetailsMissing = errors.New("user has no payment details")
	ErrStorageUnavailable    = errors.New("receipt storage is not configured")
)

// FieldError is a validation failure on one input field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) match field errors
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// translate maps gorm errors onto service sentinels
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}
