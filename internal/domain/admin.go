package domain

import "time"

// AdminRole is the portal permission level
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "ADMIN"       // Reviews transactions, manages brands
	AdminRoleSuperAdmin AdminRole = "SUPER_ADMIN" // Also manages admins and global config
)

// Valid reports whether r is a known role
func (r AdminRole) Valid() bool {
	return r == AdminRoleAdmin || r == AdminRoleSuperAdmin
}

// Admin Model
type Admin struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"size:150" json:"name"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         AdminRole  `gorm:"size:20;not null;default:ADMIN" json:"role"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ConfigValueType tells how a GlobalConfig value must parse
type ConfigValueType string

const (
	ConfigTypeNumber  ConfigValueType = "number"
	ConfigTypeBoolean ConfigValueType = "boolean"
	ConfigTypeString  ConfigValueType = "string"
)

// Known global config keys
const (
	ConfigWelcomeBonusAmount  = "welcome_bonus_amount"
	ConfigWelcomeBonusEnabled = "welcome_bonus_enabled"
	ConfigMaxPendingRequests  = "max_pending_requests"
	ConfigMaxBillAgeDays      = "max_bill_age_days"
)

// GlobalConfig is a platform-wide setting editable by super admins
type GlobalConfig struct {
	Key         string          `gorm:"primaryKey;size:100" json:"key"`
	Value       string          `gorm:"size:500;not null" json:"value"`
	Type        ConfigValueType `gorm:"size:20;not null" json:"type"`
	Description string          `gorm:"size:500" json:"description,omitempty"`
	UpdatedBy   *uint           `json:"updated_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName pins the table name
func (GlobalConfig) TableName() string {
	return "global_configs"
}
