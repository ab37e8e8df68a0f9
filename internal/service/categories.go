package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

const (
	categoryCacheKey = "categories:all"
	categoryCacheTTL = 5 * time.Minute
)

// CategoryInput carries the editable category fields
type CategoryInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
}

// CategoryService manages brand categories
type CategoryService interface {
	List(ctx context.Context) ([]domain.BrandCategory, error)
	Create(ctx context.Context, in CategoryInput) (*domain.BrandCategory, error)
	Update(ctx context.Context, id uint, in CategoryInput) (*domain.BrandCategory, error)
	// Delete refuses with ErrConflict while brands still reference the category
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewCategoryService constructs a CategoryService
func NewCategoryService(db *gorm.DB, cache *utils.Cache) CategoryService {
	return &categoryService{db: db, cache: cache}
}

func (s *categoryService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, categoryCacheKey)
	_ = s.cache.DeletePrefix(ctx, brandCachePrefix) // Brand listings embed their category
}

func (s *categoryService) List(ctx context.Context) ([]domain.BrandCategory, error) {
	var out []domain.BrandCategory
	// Serve from cache when warm
	if ok, err := s.cache.Get(ctx, categoryCacheKey, &out); err == nil && ok {
		return out, nil
	}
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.BrandCategory{}
	}
	_ = s.cache.Set(ctx, categoryCacheKey, out, categoryCacheTTL)
	return out, nil
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*domain.BrandCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	c := domain.BrandCategory{Name: name, Description: in.Description, Icon: in.Icon, Color: in.Color}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{"category_id": c.ID, "name": c.Name}).Info("Category created")
	return &c, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, in CategoryInput) (*domain.BrandCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	var c domain.BrandCategory
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	c.Name = name
	c.Description = in.Description
	c.Icon = in.Icon
	c.Color = in.Color
	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx)
	return &c, nil
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Refuse while brands still point here
		var inUse int64
		if err := tx.Model(&domain.Brand{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return ErrConflict
		}
		res := tx.Delete(&domain.BrandCategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	logrus.WithField("category_id", id).Info("Category deleted")
	return nil
}
