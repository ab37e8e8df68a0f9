package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BrandCategory groups partner brands in the app
type BrandCategory struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	Icon        string         `gorm:"size:100" json:"icon,omitempty"`
	Color       string         `gorm:"size:20" json:"color,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Brand is a partner merchant with its earn and redeem rules
type Brand struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	Name                 string          `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Description          string          `gorm:"size:1000" json:"description,omitempty"`
	LogoURL              string          `gorm:"size:500" json:"logo_url,omitempty"`
	CategoryID           *uint           `gorm:"index" json:"category_id,omitempty"`
	Category             *BrandCategory  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	EarningPercentage    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;check:chk_brands_earning_pct,earning_percentage >= 0 AND earning_percentage <= 100" json:"earning_percentage"`
	RedemptionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;check:chk_brands_redemption_pct,redemption_percentage >= 0 AND redemption_percentage <= 100" json:"redemption_percentage"`
	MinRedemptionAmount  int64           `gorm:"not null;default:0" json:"min_redemption_amount"`  // Minimum coins per redemption, 0 = none
	MaxRedemptionAmount  int64           `gorm:"not null;default:0" json:"max_redemption_amount"`  // Maximum coins per redemption, 0 = none
	BrandwiseMaxCap      int64           `gorm:"not null;default:0" json:"brandwise_max_cap"`      // Maximum coins earned per request, 0 = none
	IsActive             bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`
}
