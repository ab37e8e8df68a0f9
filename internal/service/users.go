package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)

// ProfileInput carries the editable profile fields
type ProfileInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Gender      string
	AddressLine string
	City        string
	State       string
	PostalCode  string
}

// PaymentDetailsInput is where payouts are sent
type PaymentDetailsInput struct {
	UpiID              string
	PayoutMobileNumber string
}

// UserFilter narrows admin user listings
type UserFilter struct {
	Search string // Matches mobile number or email
	Status domain.UserStatus
}

// UserService manages app users and their own settings
type UserService interface {
	Get(ctx context.Context, id uint) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*domain.UserProfile, error)
	UpdatePaymentDetails(ctx context.Context, id uint, in PaymentDetailsInput) (*domain.PaymentDetails, error)
	SetPassword(ctx context.Context, id uint, password string) error
	RequestEmailVerification(ctx context.Context, id uint) error
	ConfirmEmailVerification(ctx context.Context, id uint, code string) error
	List(ctx context.Context, f UserFilter, p utils.Page) (utils.Paged[domain.User], error)
	SetStatus(ctx context.Context, id uint, status domain.UserStatus) (*domain.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	db  *gorm.DB
	otp OTPService
}

// NewUserService constructs a UserService
func NewUserService(db *gorm.DB, otp OTPService) UserService {
	return &userService{db: db, otp: otp}
}

func (s *userService) Get(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	// Query user with every relation
	err := s.db.WithContext(ctx).
		Preload("Profile").
		Preload("PaymentDetails").
		Preload("CoinBalance").
		Preload("AuthProviders").
		First(&u, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// exists returns ErrNotFound when the user is missing or soft deleted
func (s *userService) exists(tx *gorm.DB, id uint) error {
	var u domain.User
	return translate(tx.Select("id").First(&u, id).Error)
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*domain.UserProfile, error) {
	// Validate input
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, invalid("first_name", "is required")
	}
	if in.DateOfBirth != nil && in.DateOfBirth.After(time.Now()) {
		return nil, invalid("date_of_birth", "must be in the past")
	}
	p := domain.UserProfile{
		UserID:      id,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		AddressLine: in.AddressLine,
		City:        in.City,
		State:       in.State,
		PostalCode:  in.PostalCode,
	}
	// Upsert the profile row for a live user
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.exists(tx, id); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "date_of_birth", "gender", "address_line", "city", "state", "postal_code", "updated_at"}),
		}).Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	// Read back what was stored
	var saved domain.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&saved).Error; err != nil {
		return nil, translate(err)
	}
	return &saved, nil
}

func (s *userService) UpdatePaymentDetails(ctx context.Context, id uint, in PaymentDetailsInput) (*domain.PaymentDetails, error) {
	upi := strings.TrimSpace(in.UpiID)
	// UPI ids look like name@bank
	if !upiPattern.MatchString(upi) {
		return nil, invalid("upi_id", "must look like name@bank")
	}
	d := domain.PaymentDetails{UserID: id, UpiID: upi, PayoutMobileNumber: strings.TrimSpace(in.PayoutMobileNumber)}
	// Upsert the payment row
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.exists(tx, id); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"upi_id", "payout_mobile_number", "updated_at"}),
		}).Create(&d).Error
	})
	if err != nil {
		return nil, err
	}
	var saved domain.PaymentDetails
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&saved).Error; err != nil {
		return nil, translate(err)
	}
	logrus.WithField("user_id", id).Info("Payment details updated")
	return &saved, nil
}

func (s *userService) SetPassword(ctx context.Context, id uint, password string) error {
	if len(password) < 8 || len(password) > 64 {
		return invalid("password", "must be 8 to 64 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost) // Hash the password
	if err != nil {
		return err
	}
	// Store the hash
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password_hash", string(hash))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *userService) RequestEmailVerification(ctx context.Context, id uint) error {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return translate(err)
	}
	if u.Email == nil || *u.Email == "" {
		return invalid("email", "no email address on this account")
	}
	// Nothing to verify twice
	if u.IsEmailVerified {
		return ErrConflict
	}
	return s.otp.Issue(ctx, *u.Email, domain.OTPChannelEmail, domain.OTPPurposeEmailVerification) // Send the code by email
}

func (s *userService) ConfirmEmailVerification(ctx context.Context, id uint, code string) error {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return translate(err)
	}
	if u.Email == nil || *u.Email == "" {
		return invalid("email", "no email address on this account")
	}
	// Check the code
	if err := s.otp.Verify(ctx, *u.Email, domain.OTPPurposeEmailVerification, code); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&u).Update("is_email_verified", true).Error // Mark the email verified
}

func (s *userService) List(ctx context.Context, f UserFilter, p utils.Page) (utils.Paged[domain.User], error) {
	// Search and status filters shared by count and page
	scope := func(db *gorm.DB) *gorm.DB {
		if q := strings.TrimSpace(f.Search); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("mobile_number LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		return db
	}
	// Count for pagination
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return utils.Paged[domain.User]{}, err
	}
	// Newest users first
	var items []domain.User
	if err := s.db.WithContext(ctx).Scopes(scope).Preload("Profile").Preload("CoinBalance").
		Order("id DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&items).Error; err != nil {
		return utils.Paged[domain.User]{}, err
	}
	return utils.NewPaged(items, p, total), nil
}

func (s *userService) SetStatus(ctx context.Context, id uint, status domain.UserStatus) (*domain.User, error) {
	// Admins only toggle between active and suspended
	if status != domain.UserStatusActive && status != domain.UserStatusSuspended {
		return nil, invalid("status", "must be ACTIVE or SUSPENDED")
	}
	var u domain.User
	if err := s.db.WithContext(ctx).Select("id").First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	if err := s.db.WithContext(ctx).Model(&u).Update("status", status).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": id, "status": status}).Info("User status changed")
	return s.Get(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.User{}, id) // Soft delete
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	logrus.WithField("user_id", id).Info("User deleted")
	return nil
}
