package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clubcorra/internal/config"
	"clubcorra/internal/domain"
	"clubcorra/internal/sender"
	"clubcorra/internal/utils"
)

// OTPService issues and checks one-time passwords
type OTPService interface {
	// Issue sends a fresh code and supersedes older unconsumed ones
	Issue(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) error
	// Verify consumes the latest code for identifier and purpose when it matches
	Verify(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error
	// Purge deletes codes that expired or were consumed before cutoff
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type otpService struct {
	db      *gorm.DB
	cache   *utils.Cache
	cfg     config.OTPConfig
	senders map[domain.OTPChannel]sender.Sender
	now     func() time.Time
}

// NewOTPService constructs an OTPService delivering through senders
func NewOTPService(db *gorm.DB, cache *utils.Cache, cfg config.OTPConfig, senders map[domain.OTPChannel]sender.Sender) OTPService {
	return &otpService{db: db, cache: cache, cfg: cfg, senders: senders, now: time.Now}
}

func cooldownKey(purpose domain.OTPPurpose, identifier string) string {
	return "otp:cooldown:" + string(purpose) + ":" + identifier
}

func (s *otpService) Issue(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) error {
	snd, ok := s.senders[channel]
	if !ok {
		return fmt.Errorf("no sender for channel %s", channel)
	}
	key := cooldownKey(purpose, identifier)
	acquired, err := s.cache.Acquire(ctx, key, s.cfg.ResendCooldown)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrOTPCooldown
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Supersede anything still open for this identifier and purpose
		if err := tx.Model(&domain.OTP{}).
			Where("identifier = ? AND purpose = ? AND consumed_at IS NULL", identifier, purpose).
			Update("consumed_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&domain.OTP{
			Identifier: identifier,
			Channel:    channel,
			Purpose:    purpose,
			CodeHash:   string(hash),
			ExpiresAt:  now.Add(s.cfg.TTL),
		}).Error
	})
	if err != nil {
		_ = s.cache.Delete(ctx, key)
		return err
	}

	msg := sender.Message{
		To:      identifier,
		Subject: "Your Club Corra verification code",
		Body:    fmt.Sprintf("Your Club Corra verification code is %s. It expires in %d minutes.", code, int(s.cfg.TTL.Minutes())),
	}
	if err := snd.Send(ctx, msg); err != nil {
		_ = s.cache.Delete(ctx, key) // Let the user retry right away
		logrus.WithFields(logrus.Fields{
			"channel": channel,
			"purpose": purpose,
			"error":   err.Error(),
		}).Error("OTP delivery failed")
		return fmt.Errorf("deliver otp: %w", err)
	}
	logrus.WithFields(logrus.Fields{"channel": channel, "purpose": purpose}).Info("OTP issued")
	return nil
}

func (s *otpService) Verify(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error {
	var otp domain.OTP
	err := s.db.WithContext(ctx).
		Where("identifier = ? AND purpose = ? AND consumed_at IS NULL", identifier, purpose).
		Order("id DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOTPInvalid
	} else if err != nil {
		return err
	}
	now := s.now()
	// Check expiry before spending an attempt
	if otp.Expired(now) {
		return ErrOTPExpired
	}
	// Claim an attempt before comparing so parallel guesses cannot share one
	claim := s.db.WithContext(ctx).Model(&domain.OTP{}).
		Where("id = ? AND attempts < ?", otp.ID, s.cfg.MaxAttempts).
		Update("attempts", gorm.Expr("attempts + 1"))
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		return ErrOTPAttemptsExceeded // Every attempt already spent
	}
	// Compare the code against the stored hash
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		var attempts int
		if err := s.db.WithContext(ctx).Model(&domain.OTP{}).Where("id = ?", otp.ID).
			Select("attempts").Scan(&attempts).Error; err != nil {
			return err
		}
		if attempts >= s.cfg.MaxAttempts {
			return ErrOTPAttemptsExceeded // That was the last one
		}
		return ErrOTPInvalid
	}
	// Consume once; a concurrent verify of the same code loses here
	res := s.db.WithContext(ctx).Model(&domain.OTP{}).
		Where("id = ? AND consumed_at IS NULL", otp.ID).
		Update("consumed_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOTPInvalid
	}
	return nil
}

func (s *otpService) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR consumed_at < ?", cutoff, cutoff).
		Delete(&domain.OTP{})
	return res.RowsAffected, res.Error
}
