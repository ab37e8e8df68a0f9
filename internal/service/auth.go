package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubcorra/internal/domain"
	"clubcorra/internal/oauth"
	"clubcorra/internal/utils"
)

// AuthResult is returned by every successful login
type AuthResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *domain.User  `json:"user,omitempty"`
	Admin     *domain.Admin `json:"admin,omitempty"`
}

// RegisterInput is a new app signup
type RegisterInput struct {
	MobileNumber string
	Email        string
	FirstName    string
	LastName     string
}

// AuthService handles signup and every login flow
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) error
	VerifyRegistration(ctx context.Context, mobile, code string) (*AuthResult, error)
	RequestLoginOTP(ctx context.Context, mobile string) error
	VerifyLogin(ctx context.Context, mobile, code string) (*AuthResult, error)
	LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error)
	LinkGoogle(ctx context.Context, userID uint, idToken string) (*domain.AuthProvider, error)
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenConfig holds JWT signing settings
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type authService struct {
	db     *gorm.DB
	tokens TokenConfig
	otp    OTPService
	google oauth.Verifier
	coins  CoinService
	cfg    ConfigService
}

// NewAuthService constructs an AuthService
func NewAuthService(db *gorm.DB, tokens TokenConfig, otp OTPService, google oauth.Verifier, coins CoinService, cfg ConfigService) AuthService {
	return &authService{db: db, tokens: tokens, otp: otp, google: google, coins: coins, cfg: cfg}
}

func normalizeMobile(m string) string {
	return strings.ReplaceAll(strings.TrimSpace(m), " ", "")
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *authService) userToken(u *domain.User) (*AuthResult, error) {
	token, err := utils.GenerateJWT(u.ID, utils.RoleUser, s.tokens.Secret, s.tokens.TTL) // Sign a user token
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: time.Now().Add(s.tokens.TTL).UTC(), User: u}, nil
}

// touchLogin records the login time and reloads the user with its relations
func (s *authService) touchLogin(ctx context.Context, u *domain.User) (*AuthResult, error) {
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(u).Update("last_login_at", now).Error; err != nil { // Record login time
		return nil, err
	}
	// Reload with profile and balance for the response
	if err := s.db.WithContext(ctx).Preload("Profile").Preload("CoinBalance").First(u, u.ID).Error; err != nil {
		return nil, err
	}
	logrus.WithField("user_id", u.ID).Info("User logged in")
	return s.userToken(u)
}

func (s *authService) findByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	var u domain.User
	// Query user by mobile number
	if err := s.db.WithContext(ctx).Where("mobile_number = ?", mobile).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) error {
	// Validate input
	mobile := normalizeMobile(in.MobileNumber)
	if mobile == "" {
		return invalid("mobile_number", "is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return invalid("first_name", "is required")
	}
	var email *string
	if e := normalizeEmail(in.Email); e != "" {
		email = &e
	}

	// Start transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		err := tx.Where("mobile_number = ?", mobile).First(&u).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		exists := err == nil
		// Active accounts log in instead; suspended ones stay blocked
		switch {
		case exists && u.Status == domain.UserStatusActive:
			return ErrConflict
		case exists && u.Status == domain.UserStatusSuspended:
			return ErrUserNotActive
		}
		// Email must not belong to another account
		if email != nil {
			var taken int64
			if err := tx.Model(&domain.User{}).Where("email = ? AND mobile_number <> ?", *email, mobile).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return invalid("email", "is already in use")
			}
		}
		// New user, or refresh the pending one
		if !exists {
			u = domain.User{MobileNumber: mobile, Status: domain.UserStatusPending}
		}
		u.Email = email
		if err := tx.Save(&u).Error; err != nil {
			return err
		}
		// Upsert the profile names
		profile := domain.UserProfile{UserID: u.ID, FirstName: strings.TrimSpace(in.FirstName), LastName: strings.TrimSpace(in.LastName)}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "updated_at"}),
		}).Create(&profile).Error
	})
	if err != nil {
		return translate(err)
	}
	// Send the registration code
	return s.otp.Issue(ctx, mobile, domain.OTPChannelSMS, domain.OTPPurposeRegistration)
}

func (s *authService) VerifyRegistration(ctx context.Context, mobile, code string) (*AuthResult, error) {
	mobile = normalizeMobile(mobile)
	u, err := s.findByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	// Only pending users can finish registration
	if u.Status == domain.UserStatusActive {
		return nil, ErrConflict
	}
	if u.Status != domain.UserStatusPending {
		return nil, ErrUserNotActive
	}
	// Check the code
	if err := s.otp.Verify(ctx, mobile, domain.OTPPurposeRegistration, code); err != nil {
		return nil, err
	}
	// Settings are read before the transaction takes the connection
	bonusEnabled := s.cfg.Bool(ctx, domain.ConfigWelcomeBonusEnabled, true)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Activate and create the balance row
		if err := tx.Model(u).Updates(map[string]any{
			"status":             domain.UserStatusActive,
			"is_mobile_verified": true,
		}).Error; err != nil {
			return err
		}
		_, err := ensureBalance(tx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("user_id", u.ID).Info("User registered")

	if bonusEnabled {
		if _, err := s.coins.GrantWelcomeBonus(ctx, u.ID); err != nil && !errors.Is(err, ErrWelcomeBonusGranted) {
			// Registration stands; the bonus can be granted by an adjustment
			logrus.WithFields(logrus.Fields{"user_id": u.ID, "error": err.Error()}).Error("Welcome bonus failed")
		}
	}
	return s.touchLogin(ctx, u)
}

func (s *authService) RequestLoginOTP(ctx context.Context, mobile string) error {
	mobile = normalizeMobile(mobile)
	u, err := s.findByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	// Only active users can log in
	if u.Status != domain.UserStatusActive {
		return ErrUserNotActive
	}
	return s.otp.Issue(ctx, mobile, domain.OTPChannelSMS, domain.OTPPurposeLogin)
}

func (s *authService) VerifyLogin(ctx context.Context, mobile, code string) (*AuthResult, error) {
	mobile = normalizeMobile(mobile)
	u, err := s.findByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if u.Status != domain.UserStatusActive {
		return nil, ErrUserNotActive
	}
	// Check the code
	if err := s.otp.Verify(ctx, mobile, domain.OTPPurposeLogin, code); err != nil {
		return nil, err
	}
	return s.touchLogin(ctx, u)
}

func (s *authService) LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	// Query user by email
	var u domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Same answer for unknown email, no password and wrong password
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Status != domain.UserStatusActive {
		return nil, ErrUserNotActive
	}
	return s.touchLogin(ctx, &u)
}

func (s *authService) verifyGoogle(ctx context.Context, idToken string) (*oauth.Identity, error) {
	id, err := s.google.Verify(ctx, idToken)
	if errors.Is(err, oauth.ErrInvalidIDToken) {
		return nil, ErrInvalidCredentials
	}
	return id, err
}

func (s *authService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	// Verify the ID token with Google
	id, err := s.verifyGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	var u domain.User
	var link domain.AuthProvider
	// Look for an existing link
	err = s.db.WithContext(ctx).Where("provider = ? AND provider_id = ?", domain.AuthProviderGoogle, id.Subject).First(&link).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).First(&u, link.UserID).Error; err != nil {
			return nil, translate(err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Fall back to a verified email already on an account, and remember the link
		if !id.EmailVerified || id.Email == "" {
			return nil, ErrAccountNotLinked
		}
		if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(id.Email)).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotLinked
			}
			return nil, err
		}
		link = domain.AuthProvider{UserID: u.ID, Provider: domain.AuthProviderGoogle, ProviderID: id.Subject, Email: id.Email}
		if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
			return nil, translate(err)
		}
	default:
		return nil, err
	}
	if u.Status != domain.UserStatusActive {
		return nil, ErrUserNotActive
	}
	return s.touchLogin(ctx, &u)
}

func (s *authService) LinkGoogle(ctx context.Context, userID uint, idToken string) (*domain.AuthProvider, error) {
	id, err := s.verifyGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	var link domain.AuthProvider
	// Already linked, to this user or another one
	err = s.db.WithContext(ctx).Where("provider = ? AND provider_id = ?", domain.AuthProviderGoogle, id.Subject).First(&link).Error
	if err == nil {
		if link.UserID != userID {
			return nil, ErrConflict
		}
		return &link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// Create the link
	link = domain.AuthProvider{UserID: userID, Provider: domain.AuthProviderGoogle, ProviderID: id.Subject, Email: id.Email}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, translate(err)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "provider": link.Provider}).Info("Auth provider linked")
	return &link, nil
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	// Query admin by email
	var a domain.Admin
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Compare password hash
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	// Deactivated admins cannot log in
	if !a.IsActive {
		return nil, ErrForbidden
	}
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&a).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	// Token role follows the admin row
	role := utils.RoleAdmin
	if a.Role == domain.AdminRoleSuperAdmin {
		role = utils.RoleSuperAdmin
	}
	token, err := utils.GenerateJWT(a.ID, role, s.tokens.Secret, s.tokens.TTL)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"admin_id": a.ID, "role": a.Role}).Info("Admin logged in")
	return &AuthResult{Token: token, ExpiresAt: now.Add(s.tokens.TTL).UTC(), Admin: &a}, nil
}
