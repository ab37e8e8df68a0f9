package domain

import "time"

// CoinBalance Model, one row per user
type CoinBalance struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`                                      // Owner
	Balance       int64     `gorm:"not null;default:0;check:chk_coin_balances_non_negative,balance >= 0" json:"balance"` // Spendable coins
	TotalEarned   int64     `gorm:"not null;default:0" json:"total_earned"`                                   // Lifetime credited coins
	TotalRedeemed int64     `gorm:"not null;default:0" json:"total_redeemed"`                                 // Lifetime redeemed coins
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
