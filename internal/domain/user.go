package domain

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus is the lifecycle state of an app user
type UserStatus string

const (
	UserStatusPending   UserStatus = "PENDING"   // Registered, mobile not verified yet
	UserStatusActive    UserStatus = "ACTIVE"    // Verified and allowed to log in
	UserStatusSuspended UserStatus = "SUSPENDED" // Blocked by an admin
)

// Valid reports whether s is a known status
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusSuspended:
		return true
	}
	return false
}

// User Model
type User struct {
	ID               uint            `gorm:"primaryKey" json:"id"`                                // Primary key
	MobileNumber     string          `gorm:"size:20;uniqueIndex;not null" json:"mobile_number"`   // Login identity
	Email            *string         `gorm:"size:191;uniqueIndex" json:"email,omitempty"`         // Optional, unique when set
	PasswordHash     string          `gorm:"size:255" json:"-"`                                   // Optional email/password login
	Status           UserStatus      `gorm:"size:20;not null;default:PENDING;index" json:"status"` // Lifecycle state
	IsMobileVerified bool            `gorm:"not null;default:false" json:"is_mobile_verified"`
	IsEmailVerified  bool            `gorm:"not null;default:false" json:"is_email_verified"`
	LastLoginAt      *time.Time      `json:"last_login_at,omitempty"`
	Profile          *UserProfile    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile,omitempty"`
	PaymentDetails   *PaymentDetails `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payment_details,omitempty"`
	CoinBalance      *CoinBalance    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"coin_balance,omitempty"`
	AuthProviders    []AuthProvider  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"auth_providers,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"` // Soft delete
}

// UserProfile holds the personal details shown in the app
type UserProfile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"` // One profile per user
	FirstName   string     `gorm:"size:100" json:"first_name"`
	LastName    string     `gorm:"size:100" json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"size:20" json:"gender,omitempty"`
	AddressLine string     `gorm:"size:255" json:"address_line,omitempty"`
	City        string     `gorm:"size:100" json:"city,omitempty"`
	State       string     `gorm:"size:100" json:"state,omitempty"`
	PostalCode  string     `gorm:"size:20" json:"postal_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PaymentDetails is where redeemed coins are paid out
type PaymentDetails struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	UpiID               string    `gorm:"size:255" json:"upi_id"`
	PayoutMobileNumber  string    `gorm:"size:20" json:"payout_mobile_number,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// AuthProviderName identifies a social login provider
type AuthProviderName string

const AuthProviderGoogle AuthProviderName = "GOOGLE"

// AuthProvider links a user to an external identity
type AuthProvider struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"index;not null" json:"user_id"`
	Provider   AuthProviderName `gorm:"size:20;not null;uniqueIndex:idx_provider_subject" json:"provider"`
	ProviderID string           `gorm:"size:191;not null;uniqueIndex:idx_provider_subject" json:"provider_id"` // Subject at the provider
	Email      string           `gorm:"size:191" json:"email,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
