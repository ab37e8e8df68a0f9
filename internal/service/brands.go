package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

const (
	brandCachePrefix = "brands:"
	brandCacheTTL    = time.Minute
)

// BrandInput carries the editable brand fields
type BrandInput struct {
	Name                 string
	Description          string
	LogoURL              string
	CategoryID           *uint
	EarningPercentage    decimal.Decimal
	RedemptionPercentage decimal.Decimal
	MinRedemptionAmount  int64
	MaxRedemptionAmount  int64
	BrandwiseMaxCap      int64
	IsActive             *bool // nil keeps the current value, new brands default to active
}

// BrandFilter narrows brand listings
type BrandFilter struct {
	CategoryID      uint
	Search          string
	IncludeInactive bool // Admin listings
}

// BrandService manages partner brands
type BrandService interface {
	List(ctx context.Context, f BrandFilter, p utils.Page) (utils.Paged[domain.Brand], error)
	Get(ctx context.Context, id uint, includeInactive bool) (*domain.Brand, error)
	Create(ctx context.Context, in BrandInput) (*domain.Brand, error)
	Update(ctx context.Context, id uint, in BrandInput) (*domain.Brand, error)
	SetActive(ctx context.Context, id uint, active bool) (*domain.Brand, error)
	Delete(ctx context.Context, id uint) error
}

type brandService struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewBrandService constructs a BrandService
func NewBrandService(db *gorm.DB, cache *utils.Cache) BrandService {
	return &brandService{db: db, cache: cache}
}

var hundred = decimal.NewFromInt(100)

func validateBrand(in *BrandInput) error {
	in.Name = strings.TrimSpace(in.Name) // Normalize name
	if in.Name == "" {
		return invalid("name", "is required")
	}
	// Percentages stay within 0..100, matching the DB checks
	if in.EarningPercentage.IsNegative() || in.EarningPercentage.GreaterThan(hundred) {
		return invalid("earning_percentage", "must be between 0 and 100")
	}
	if in.RedemptionPercentage.IsNegative() || in.RedemptionPercentage.GreaterThan(hundred) {
		return invalid("redemption_percentage", "must be between 0 and 100")
	}
	// Caps are non-negative; 0 means no limit
	if in.MinRedemptionAmount < 0 {
		return invalid("min_redemption_amount", "must not be negative")
	}
	if in.MaxRedemptionAmount < 0 {
		return invalid("max_redemption_amount", "must not be negative")
	}
	if in.BrandwiseMaxCap < 0 {
		return invalid("brandwise_max_cap", "must not be negative")
	}
	// Min must not exceed max when both are set
	if in.MinRedemptionAmount > 0 && in.MaxRedemptionAmount > 0 && in.MinRedemptionAmount > in.MaxRedemptionAmount {
		return invalid("min_redemption_amount", "must not exceed max_redemption_amount")
	}
	return nil
}

// checkCategory confirms the referenced category exists
func checkCategory(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&domain.BrandCategory{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid("category_id", "does not exist")
	}
	return nil
}

func (s *brandService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, brandCachePrefix); err != nil {
		logrus.WithField("error", err.Error()).Warn("Brand cache invalidation failed")
	}
}

func (s *brandService) List(ctx context.Context, f BrandFilter, p utils.Page) (utils.Paged[domain.Brand], error) {
	key := fmt.Sprintf("%slist:%d:%s:%d:%d", brandCachePrefix, f.CategoryID, strings.ToLower(f.Search), p.Page, p.PageSize) // One cache entry per filter and page
	var out utils.Paged[domain.Brand]
	// Only the public listing is cached
	if !f.IncludeInactive {
		if ok, err := s.cache.Get(ctx, key, &out); err == nil && ok {
			return out, nil
		}
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if !f.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if f.CategoryID != 0 {
			db = db.Where("category_id = ?", f.CategoryID)
		}
		if q := strings.TrimSpace(f.Search); q != "" {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		return db
	}
	// Count for pagination
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Brand{}).Scopes(scope).Count(&total).Error; err != nil {
		return out, err
	}
	// Query page ordered by name
	var items []domain.Brand
	if err := s.db.WithContext(ctx).Scopes(scope).Preload("Category").Order("name").
		Offset(p.Offset()).Limit(p.PageSize).Find(&items).Error; err != nil {
		return out, err
	}
	out = utils.NewPaged(items, p, total)
	if !f.IncludeInactive {
		_ = s.cache.Set(ctx, key, out, brandCacheTTL)
	}
	return out, nil
}

func (s *brandService) Get(ctx context.Context, id uint, includeInactive bool) (*domain.Brand, error) {
	var b domain.Brand
	if err := s.db.WithContext(ctx).Preload("Category").First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	// Inactive brands are hidden from the app
	if !b.IsActive && !includeInactive {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *brandService) Create(ctx context.Context, in BrandInput) (*domain.Brand, error) {
	if err := validateBrand(&in); err != nil {
		return nil, err
	}
	// Build the row; new brands are active unless told otherwise
	b := domain.Brand{
		Name:                 in.Name,
		Description:          in.Description,
		LogoURL:              in.LogoURL,
		CategoryID:           in.CategoryID,
		EarningPercentage:    in.EarningPercentage,
		RedemptionPercentage: in.RedemptionPercentage,
		MinRedemptionAmount:  in.MinRedemptionAmount,
		MaxRedemptionAmount:  in.MaxRedemptionAmount,
		BrandwiseMaxCap:      in.BrandwiseMaxCap,
		IsActive:             in.IsActive == nil || *in.IsActive,
	}
	// Category check and insert in one transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, in.CategoryID); err != nil {
			return err
		}
		return tx.Create(&b).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx) // Drop cached listings
	logrus.WithFields(logrus.Fields{"brand_id": b.ID, "name": b.Name}).Info("Brand created")
	return &b, nil
}

func (s *brandService) Update(ctx context.Context, id uint, in BrandInput) (*domain.Brand, error) {
	if err := validateBrand(&in); err != nil {
		return nil, err
	}
	var b domain.Brand
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load the brand to update
		if err := tx.First(&b, id).Error; err != nil {
			return err
		}
		if err := checkCategory(tx, in.CategoryID); err != nil {
			return err
		}
		b.Name = in.Name
		b.Description = in.Description
		b.LogoURL = in.LogoURL
		b.CategoryID = in.CategoryID
		b.Category = nil // Let gorm follow CategoryID
		b.EarningPercentage = in.EarningPercentage
		b.RedemptionPercentage = in.RedemptionPercentage
		b.MinRedemptionAmount = in.MinRedemptionAmount
		b.MaxRedemptionAmount = in.MaxRedemptionAmount
		b.BrandwiseMaxCap = in.BrandwiseMaxCap
		// Active flag only changes when sent
		if in.IsActive != nil {
			b.IsActive = *in.IsActive
		}
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, id, true)
}

func (s *brandService) SetActive(ctx context.Context, id uint, active bool) (*domain.Brand, error) {
	var b domain.Brand
	if err := s.db.WithContext(ctx).Select("id").First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	// Affected-row counts are unreliable when the value does not change, so existence is checked above
	if err := s.db.WithContext(ctx).Model(&b).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{"brand_id": id, "active": active}).Info("Brand status changed")
	return s.Get(ctx, id, true)
}

func (s *brandService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Brand{}, id) // Soft delete
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx)
	logrus.WithField("brand_id", id).Info("Brand deleted")
	return nil
}
