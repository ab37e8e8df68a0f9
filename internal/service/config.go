package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

const configCacheTTL = time.Minute

// ConfigService reads and edits platform-wide settings
type ConfigService interface {
	List(ctx context.Context) ([]domain.GlobalConfig, error)
	// Int returns the numeric value of key, or def when it is missing or malformed
	Int(ctx context.Context, key string, def int64) int64
	// Bool returns the boolean value of key, or def when it is missing or malformed
	Bool(ctx context.Context, key string, def bool) bool
	// Set validates value against the row type and stores it
	Set(ctx context.Context, key, value string, adminID uint) (*domain.GlobalConfig, error)
}

type configService struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewConfigService constructs a ConfigService
func NewConfigService(db *gorm.DB, cache *utils.Cache) ConfigService {
	return &configService{db: db, cache: cache}
}

func configKey(key string) string {
	return "config:" + key
}

func (s *configService) List(ctx context.Context) ([]domain.GlobalConfig, error) {
	var rows []domain.GlobalConfig
	if err := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// raw returns the stored string for key through the cache.
// Lookups use struct conditions so the reserved column name is quoted.
func (s *configService) raw(ctx context.Context, key string) (string, bool) {
	var v string
	if ok, err := s.cache.Get(ctx, configKey(key), &v); err == nil && ok {
		return v, true
	}
	var row domain.GlobalConfig
	if err := s.db.WithContext(ctx).Where(&domain.GlobalConfig{Key: key}).First(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Config lookup failed")
		}
		return "", false
	}
	_ = s.cache.Set(ctx, configKey(key), row.Value, configCacheTTL)
	return row.Value, true
}

func (s *configService) Int(ctx context.Context, key string, def int64) int64 {
	v, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Config value is not a number, using default")
		return def
	}
	return n
}

func (s *configService) Bool(ctx context.Context, key string, def bool) bool {
	v, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("Config value is not a boolean, using default")
		return def
	}
	return b
}

// normalizeConfigValue checks value against t and returns its canonical form
func normalizeConfigValue(t domain.ConfigValueType, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch t {
	case domain.ConfigTypeNumber:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return "", invalid("value", "must be a whole number")
		}
		if n < 0 {
			return "", invalid("value", "must not be negative")
		}
		return strconv.FormatInt(n, 10), nil
	case domain.ConfigTypeBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", invalid("value", "must be true or false")
		}
		return strconv.FormatBool(b), nil
	default:
		if len(value) > 500 {
			return "", invalid("value", "must be at most 500 characters")
		}
		return value, nil
	}
}

func (s *configService) Set(ctx context.Context, key, value string, adminID uint) (*domain.GlobalConfig, error) {
	var row domain.GlobalConfig
	if err := s.db.WithContext(ctx).Where(&domain.GlobalConfig{Key: key}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	normalized, err := normalizeConfigValue(row.Type, value)
	if err != nil {
		return nil, err
	}
	row.Value = normalized
	row.UpdatedBy = &adminID
	if err := s.db.WithContext(ctx).Model(&row).Updates(map[string]any{"value": normalized, "updated_by": adminID}).Error; err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, configKey(key))
	logrus.WithFields(logrus.Fields{"key": key, "value": normalized, "admin_id": adminID}).Info("Global config updated")
	return &row, nil
}
