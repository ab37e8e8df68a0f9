package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a coin movement
type TransactionType string

const (
	TransactionTypeWelcomeBonus  TransactionType = "WELCOME_BONUS"  // One-time grant at signup
	TransactionTypeRewardRequest TransactionType = "REWARD_REQUEST" // Bill submitted by a user, earns and optionally redeems
	TransactionTypeAdjustment    TransactionType = "ADJUSTMENT"     // Manual correction by an admin
)

// Valid reports whether t is a known type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeWelcomeBonus, TransactionTypeRewardRequest, TransactionTypeAdjustment:
		return true
	}
	return false
}

// TransactionStatus is the review and payout state of a coin transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusApproved  TransactionStatus = "APPROVED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
	TransactionStatusProcessed TransactionStatus = "PROCESSED"
	TransactionStatusPaid      TransactionStatus = "PAID"
)

// AllTransactionStatuses lists statuses in workflow order
var AllTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusApproved,
	TransactionStatusRejected,
	TransactionStatusProcessed,
	TransactionStatusPaid,
}

// Valid reports whether s is a known status
func (s TransactionStatus) Valid() bool {
	for _, known := range AllTransactionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// transitions holds the only allowed next status for each status
var transitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:   {TransactionStatusApproved, TransactionStatusRejected},
	TransactionStatusApproved:  {TransactionStatusProcessed},
	TransactionStatusProcessed: {TransactionStatusPaid},
}

// CanTransition reports whether moving from one status to another is a single allowed step
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CoinTransaction Model
type CoinTransaction struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	UserID               uint              `gorm:"not null;index" json:"user_id"`
	User                 *User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	BrandID              *uint             `gorm:"index" json:"brand_id,omitempty"`
	Brand                *Brand            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
	Type                 TransactionType   `gorm:"size:30;not null;index" json:"type"`
	Status               TransactionStatus `gorm:"size:20;not null;index" json:"status"`
	BillAmount           decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"bill_amount"`
	BillDate             *time.Time        `json:"bill_date,omitempty"`
	ReceiptKey           string            `gorm:"size:255" json:"receipt_key,omitempty"` // Object key in receipt storage
	CoinsEarned          int64             `gorm:"not null;default:0" json:"coins_earned"`
	CoinsRedeemed        int64             `gorm:"not null;default:0" json:"coins_redeemed"`
	Amount               int64             `gorm:"not null;default:0" json:"amount"`           // Net coins: earned minus redeemed
	PreviousBalance      int64             `gorm:"not null;default:0" json:"previous_balance"` // Balance when the row was created
	Reason               string            `gorm:"size:500" json:"reason,omitempty"`
	AdminNotes           string            `gorm:"size:1000" json:"admin_notes,omitempty"`
	ReviewedBy           *uint             `json:"reviewed_by,omitempty"` // Admin id
	ReviewedAt           *time.Time        `json:"reviewed_at,omitempty"`
	ProcessedAt          *time.Time        `json:"processed_at,omitempty"`
	PaidAt               *time.Time        `json:"paid_at,omitempty"`
	PaymentTransactionID *string           `gorm:"size:191;uniqueIndex" json:"payment_transaction_id,omitempty"`
	PaymentMethod        string            `gorm:"size:30" json:"payment_method,omitempty"`
	UniqueKey            *string           `gorm:"size:191;uniqueIndex" json:"-"` // welcome_bonus:<user id> keeps the bonus single
	CreatedAt            time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}
