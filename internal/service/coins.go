package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clubcorra/internal/domain"
	"clubcorra/internal/notify"
	"clubcorra/internal/utils"
)

const balanceCacheTTL = 5 * time.Minute

// RewardRequestInput is a bill submitted by a user
type RewardRequestInput struct {
	BrandID       uint
	BillAmount    decimal.Decimal
	BillDate      time.Time
	CoinsToRedeem int64
	ReceiptKey    string
}

// PaymentInput records how a payout was made
type PaymentInput struct {
	PaymentTransactionID string
	PaymentMethod        string
}

// TransactionFilter narrows transaction listings; zero values are ignored
type TransactionFilter struct {
	UserID  uint
	BrandID uint
	Type    domain.TransactionType
	Status  domain.TransactionStatus
	From    *time.Time
	To      *time.Time
}

// CoinService owns balances and the reward request workflow
type CoinService interface {
	Balance(ctx context.Context, userID uint) (*domain.CoinBalance, error)
	GrantWelcomeBonus(ctx context.Context, userID uint) (*domain.CoinTransaction, error)
	SubmitRewardRequest(ctx context.Context, userID uint, in RewardRequestInput) (*domain.CoinTransaction, error)
	Approve(ctx context.Context, id, adminID uint, notes string) (*domain.CoinTransaction, error)
	Reject(ctx context.Context, id, adminID uint, notes string) (*domain.CoinTransaction, error)
	MarkProcessed(ctx context.Context, id, adminID uint) (*domain.CoinTransaction, error)
	MarkPaid(ctx context.Context, id, adminID uint, in PaymentInput) (*domain.CoinTransaction, error)
	Adjust(ctx context.Context, userID, adminID uint, coins int64, reason string) (*domain.CoinTransaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter, p utils.Page) (utils.Paged[domain.CoinTransaction], error)
	GetTransaction(ctx context.Context, id uint) (*domain.CoinTransaction, error)
	GetUserTransaction(ctx context.Context, userID, id uint) (*domain.CoinTransaction, error)
	CountStalePending(ctx context.Context, olderThan time.Time) (int64, error)
}

type coinService struct {
	db    *gorm.DB
	cache *utils.Cache
	pub   notify.Publisher
	cfg   ConfigService
	now   func() time.Time
}

// NewCoinService constructs a CoinService
func NewCoinService(db *gorm.DB, cache *utils.Cache, pub notify.Publisher, cfg ConfigService) CoinService {
	if pub == nil {
		pub = notify.NopPublisher{}
	}
	return &coinService{db: db, cache: cache, pub: pub, cfg: cfg, now: time.Now}
}

func balanceKey(userID uint) string {
	return "balance:user:" + strconv.FormatUint(uint64(userID), 10)
}

// WelcomeBonusKey is the unique key that limits a user to one welcome bonus
func WelcomeBonusKey(userID uint) string {
	return fmt.Sprintf("welcome_bonus:%d", userID)
}

// ReceiptPrefix is the object key prefix for a user's receipts
func ReceiptPrefix(userID uint) string {
	return fmt.Sprintf("receipts/%d/", userID)
}

// EarnedCoins is floor(bill * earning% / 100), capped by the brand-wise cap when set
func EarnedCoins(b *domain.Brand, bill decimal.Decimal) int64 {
	earned := bill.Mul(b.EarningPercentage).Div(decimal.NewFromInt(100)).Floor().IntPart()
	if b.BrandwiseMaxCap > 0 && earned > b.BrandwiseMaxCap {
		earned = b.BrandwiseMaxCap
	}
	return earned
}

// MaxRedeemable is floor(bill * redemption% / 100)
func MaxRedeemable(b *domain.Brand, bill decimal.Decimal) int64 {
	return bill.Mul(b.RedemptionPercentage).Div(decimal.NewFromInt(100)).Floor().IntPart()
}

// checkRedemption applies the brand limits to a requested redemption
func checkRedemption(b *domain.Brand, bill decimal.Decimal, coins int64) error {
	if coins < 0 {
		return invalid("coins_to_redeem", "must not be negative")
	}
	if coins == 0 {
		return nil
	}
	if b.MinRedemptionAmount > 0 && coins < b.MinRedemptionAmount {
		return invalid("coins_to_redeem", fmt.Sprintf("must be at least %d", b.MinRedemptionAmount))
	}
	if b.MaxRedemptionAmount > 0 && coins > b.MaxRedemptionAmount {
		return invalid("coins_to_redeem", fmt.Sprintf("must be at most %d", b.MaxRedemptionAmount))
	}
	if limit := MaxRedeemable(b, bill); coins > limit {
		return invalid("coins_to_redeem", fmt.Sprintf("exceeds the %s%% redemption limit for this bill (%d)", b.RedemptionPercentage.String(), limit))
	}
	if bill.LessThan(decimal.NewFromInt(coins)) {
		return invalid("coins_to_redeem", "must not exceed the bill amount")
	}
	return nil
}

// ensureBalance returns the user's balance row, creating an empty one when missing
func ensureBalance(tx *gorm.DB, userID uint) (*domain.CoinBalance, error) {
	var bal domain.CoinBalance
	if err := tx.Where(domain.CoinBalance{UserID: userID}).FirstOrCreate(&bal).Error; err != nil {
		return nil, err
	}
	return &bal, nil
}

func credit(tx *gorm.DB, userID uint, coins int64) error {
	return tx.Model(&domain.CoinBalance{}).Where("user_id = ?", userID).Updates(map[string]any{
		"balance":      gorm.Expr("balance + ?", coins),
		"total_earned": gorm.Expr("total_earned + ?", coins),
	}).Error
}

// reserve debits coins only when the balance covers them
func reserve(tx *gorm.DB, userID uint, coins int64) error {
	res := tx.Model(&domain.CoinBalance{}).Where("user_id = ? AND balance >= ?", userID, coins).Updates(map[string]any{
		"balance":        gorm.Expr("balance - ?", coins),
		"total_redeemed": gorm.Expr("total_redeemed + ?", coins),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func refund(tx *gorm.DB, userID uint, coins int64) error {
	return tx.Model(&domain.CoinBalance{}).Where("user_id = ?", userID).Updates(map[string]any{
		"balance":        gorm.Expr("balance + ?", coins),
		"total_redeemed": gorm.Expr("total_redeemed - ?", coins),
	}).Error
}

// invalidate drops caches that depend on a user's balance or on transaction counts
func (s *coinService) invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Delete(ctx, balanceKey(userID), DashboardCacheKey); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

func (s *coinService) Balance(ctx context.Context, userID uint) (*domain.CoinBalance, error) {
	var bal domain.CoinBalance
	if ok, err := s.cache.Get(ctx, balanceKey(userID), &bal); err == nil && ok { // Serve from cache when present
		return &bal, nil
	}
	// Query balance by user id
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&bal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = s.cache.Set(ctx, balanceKey(userID), bal, balanceCacheTTL) // Cache the result
	return &bal, nil
}

func (s *coinService) GrantWelcomeBonus(ctx context.Context, userID uint) (*domain.CoinTransaction, error) {
	amount := s.cfg.Int(ctx, domain.ConfigWelcomeBonusAmount, 100)
	if amount <= 0 {
		return nil, invalid(domain.ConfigWelcomeBonusAmount, "must be positive")
	}
	// One key per user, unique in the table
	key := WelcomeBonusKey(userID)
	now := s.now()
	var t domain.CoinTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// User must exist
		var user domain.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			return err
		}
		// Pre-check for an earlier grant
		var granted int64
		if err := tx.Model(&domain.CoinTransaction{}).Where("unique_key = ?", key).Count(&granted).Error; err != nil {
			return err
		}
		if granted > 0 {
			return ErrWelcomeBonusGranted
		}
		// Balance before the credit
		bal, err := ensureBalance(tx, userID)
		if err != nil {
			return err
		}
		// Approved straight away
		t = domain.CoinTransaction{
			UserID:          userID,
			Type:            domain.TransactionTypeWelcomeBonus,
			Status:          domain.TransactionStatusApproved,
			CoinsEarned:     amount,
			Amount:          amount,
			PreviousBalance: bal.Balance,
			Reason:          "Welcome bonus",
			ReviewedAt:      &now,
			UniqueKey:       &key,
		}
		if err := tx.Create(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrWelcomeBonusGranted // Lost a race with another grant
			}
			return err
		}
		// Credit the bonus
		return credit(tx, userID, amount)
	})
	if err != nil {
		return nil, translate(err)
	}
	// Drop cached balance and stats
	s.invalidate(ctx, userID)
	logrus.WithFields(logrus.Fields{"user_id": userID, "coins": amount, "transaction_id": t.ID}).Info("Welcome bonus granted")
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventTransactionCreated, TransactionID: t.ID, UserID: userID, Status: string(t.Status), Coins: amount})
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventBalanceUpdated, UserID: userID})
	return &t, nil
}

// calendarDay is the UTC date of t at midnight. A bill date is accepted while
// it is a valid day in some zone between UTC-12 and UTC+14.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *coinService) SubmitRewardRequest(ctx context.Context, userID uint, in RewardRequestInput) (*domain.CoinTransaction, error) {
	// Read settings up front; the transaction below holds the connection
	maxPending := s.cfg.Int(ctx, domain.ConfigMaxPendingRequests, 5)
	maxAgeDays := s.cfg.Int(ctx, domain.ConfigMaxBillAgeDays, 30)

	now := s.now()
	// Validate input before touching the database
	if in.BrandID == 0 {
		return nil, invalid("brand_id", "is required")
	}
	if !in.BillAmount.IsPositive() {
		return nil, invalid("bill_amount", "must be greater than zero")
	}
	if in.BillDate.IsZero() {
		return nil, invalid("bill_date", "is required")
	}
	// Compare calendar days, not instants
	billDay, earliest, latest := calendarDay(in.BillDate), calendarDay(now.Add(-12*time.Hour)), calendarDay(now.Add(14*time.Hour))
	if billDay.After(latest) {
		return nil, invalid("bill_date", "must not be in the future")
	}
	if maxAgeDays > 0 && billDay.Before(earliest.AddDate(0, 0, -int(maxAgeDays))) {
		return nil, invalid("bill_date", fmt.Sprintf("must be within the last %d days", maxAgeDays))
	}
	if in.CoinsToRedeem < 0 {
		return nil, invalid("coins_to_redeem", "must not be negative")
	}
	// Receipts must come from the same user
	if in.ReceiptKey != "" && !strings.HasPrefix(in.ReceiptKey, ReceiptPrefix(userID)) {
		return nil, invalid("receipt_key", "does not belong to this user")
	}

	billDate := in.BillDate.UTC()
	var t domain.CoinTransaction
	// Start transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Brand must exist and be active
		var brand domain.Brand
		if err := tx.First(&brand, in.BrandID).Error; err != nil {
			return err
		}
		if !brand.IsActive {
			return ErrBrandInactive
		}
		// Limit open requests per user
		var pending int64
		if err := tx.Model(&domain.CoinTransaction{}).
			Where("user_id = ? AND type = ? AND status = ?", userID, domain.TransactionTypeRewardRequest, domain.TransactionStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if maxPending > 0 && pending >= maxPending {
			return ErrTooManyPending
		}

		// Work out coins from the brand rules
		earned := EarnedCoins(&brand, in.BillAmount)
		if err := checkRedemption(&brand, in.BillAmount, in.CoinsToRedeem); err != nil {
			return err
		}
		if earned == 0 && in.CoinsToRedeem == 0 {
			return invalid("bill_amount", "this bill neither earns nor redeems coins")
		}

		// Snapshot the balance for the record
		bal, err := ensureBalance(tx, userID)
		if err != nil {
			return err
		}
		// Reserve redeemed coins now, refunded on rejection
		if in.CoinsToRedeem > 0 {
			if err := reserve(tx, userID, in.CoinsToRedeem); err != nil {
				return err
			}
		}
		// Create the pending request
		t = domain.CoinTransaction{
			UserID:          userID,
			BrandID:         &brand.ID,
			Type:            domain.TransactionTypeRewardRequest,
			Status:          domain.TransactionStatusPending,
			BillAmount:      in.BillAmount,
			BillDate:        &billDate,
			ReceiptKey:      in.ReceiptKey,
			CoinsEarned:     earned,
			CoinsRedeemed:   in.CoinsToRedeem,
			Amount:          earned - in.CoinsToRedeem,
			PreviousBalance: bal.Balance,
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	// Post-commit: caches, log, events
	s.invalidate(ctx, userID)
	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": t.ID,
		"brand_id":       in.BrandID,
		"earned":         t.CoinsEarned,
		"redeemed":       t.CoinsRedeemed,
	}).Info("Reward request submitted")
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventTransactionCreated, TransactionID: t.ID, UserID: userID, Status: string(t.Status), Coins: t.Amount})
	if t.CoinsRedeemed > 0 {
		notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventBalanceUpdated, UserID: userID})
	}
	return &t, nil
}

// transition moves a transaction to status `to`. apply may move coins, add
// column updates and report whether the balance changed. The status update is
// conditional on the status read inside the transaction, so a concurrent
// reviewer gets ErrInvalidTransition.
func (s *coinService) transition(ctx context.Context, id uint, to domain.TransactionStatus,
	apply func(tx *gorm.DB, t *domain.CoinTransaction, updates map[string]any) (bool, error)) (*domain.CoinTransaction, bool, error) {
	var t domain.CoinTransaction
	var balanceChanged bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load current state
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		// Only one step forward at a time
		if !domain.CanTransition(t.Status, to) {
			return ErrInvalidTransition
		}
		from := t.Status
		updates := map[string]any{"status": to}
		// Move coins and collect extra columns
		changed, err := apply(tx, &t, updates)
		if err != nil {
			return err
		}
		balanceChanged = changed
		// Conditional update; a concurrent reviewer matches no row
		res := tx.Model(&domain.CoinTransaction{}).Where("id = ? AND status = ?", id, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return tx.Preload("Brand").First(&t, id).Error // Reload for the response
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &t, balanceChanged, nil
}

// afterTransition runs the post-commit side effects of a status change
func (s *coinService) afterTransition(ctx context.Context, t *domain.CoinTransaction, adminID uint, balanceChanged bool) {
	s.invalidate(ctx, t.UserID)
	logrus.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"user_id":        t.UserID,
		"admin_id":       adminID,
		"status":         t.Status,
	}).Info("Transaction status changed")
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventTransactionUpdated, TransactionID: t.ID, UserID: t.UserID, Status: string(t.Status), Coins: t.Amount})
	if balanceChanged {
		notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventBalanceUpdated, UserID: t.UserID})
	}
}

func (s *coinService) Approve(ctx context.Context, id, adminID uint, notes string) (*domain.CoinTransaction, error) {
	now := s.now()
	t, changed, err := s.transition(ctx, id, domain.TransactionStatusApproved, func(tx *gorm.DB, t *domain.CoinTransaction, updates map[string]any) (bool, error) {
		updates["reviewed_by"] = adminID
		updates["reviewed_at"] = now
		updates["admin_notes"] = strings.TrimSpace(notes)
		// Nothing to credit
		if t.CoinsEarned <= 0 {
			return false, nil
		}
		if _, err := ensureBalance(tx, t.UserID); err != nil {
			return false, err
		}
		// Credit earned coins
		return true, credit(tx, t.UserID, t.CoinsEarned)
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, t, adminID, changed)
	return t, nil
}

func (s *coinService) Reject(ctx context.Context, id, adminID uint, notes string) (*domain.CoinTransaction, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, invalid("notes", "a rejection reason is required")
	}
	now := s.now()
	t, changed, err := s.transition(ctx, id, domain.TransactionStatusRejected, func(tx *gorm.DB, t *domain.CoinTransaction, updates map[string]any) (bool, error) {
		updates["reviewed_by"] = adminID
		updates["reviewed_at"] = now
		updates["admin_notes"] = notes
		// Nothing was reserved
		if t.CoinsRedeemed <= 0 {
			return false, nil
		}
		// Give reserved coins back
		return true, refund(tx, t.UserID, t.CoinsRedeemed)
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, t, adminID, changed)
	return t, nil
}

func (s *coinService) MarkProcessed(ctx context.Context, id, adminID uint) (*domain.CoinTransaction, error) {
	now := s.now()
	t, _, err := s.transition(ctx, id, domain.TransactionStatusProcessed, func(tx *gorm.DB, t *domain.CoinTransaction, updates map[string]any) (bool, error) {
		// Payout only exists when coins were redeemed
		if t.CoinsRedeemed <= 0 {
			return false, ErrNoPayoutDue
		}
		// Payout needs a UPI id
		var details int64
		if err := tx.Model(&domain.PaymentDetails{}).Where("user_id = ? AND upi_id <> ''", t.UserID).Count(&details).Error; err != nil {
			return false, err
		}
		if details == 0 {
			return false, ErrPaymentDetailsMissing
		}
		updates["processed_at"] = now
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, t, adminID, false)
	return t, nil
}

func (s *coinService) MarkPaid(ctx context.Context, id, adminID uint, in PaymentInput) (*domain.CoinTransaction, error) {
	paymentID := strings.TrimSpace(in.PaymentTransactionID)
	if paymentID == "" {
		return nil, invalid("payment_transaction_id", "is required")
	}
	now := s.now()
	t, _, err := s.transition(ctx, id, domain.TransactionStatusPaid, func(tx *gorm.DB, t *domain.CoinTransaction, updates map[string]any) (bool, error) {
		updates["paid_at"] = now
		updates["payment_transaction_id"] = paymentID
		updates["payment_method"] = strings.TrimSpace(in.PaymentMethod)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, t, adminID, false)
	return t, nil
}

func (s *coinService) Adjust(ctx context.Context, userID, adminID uint, coins int64, reason string) (*domain.CoinTransaction, error) {
	reason = strings.TrimSpace(reason)
	if coins == 0 {
		return nil, invalid("coins", "must not be zero")
	}
	if reason == "" {
		return nil, invalid("reason", "is required")
	}
	now := s.now()
	var t domain.CoinTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			return err
		}
		bal, err := ensureBalance(tx, userID)
		if err != nil {
			return err
		}
		// Credits always fit; debits must not go negative
		if coins > 0 {
			if err := tx.Model(&domain.CoinBalance{}).Where("user_id = ?", userID).
				Update("balance", gorm.Expr("balance + ?", coins)).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&domain.CoinBalance{}).Where("user_id = ? AND balance >= ?", userID, -coins).
				Update("balance", gorm.Expr("balance - ?", -coins))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientBalance
			}
		}
		// Record the adjustment
		t = domain.CoinTransaction{
			UserID:          userID,
			Type:            domain.TransactionTypeAdjustment,
			Status:          domain.TransactionStatusApproved,
			Amount:          coins,
			PreviousBalance: bal.Balance,
			Reason:          reason,
			ReviewedBy:      &adminID,
			ReviewedAt:      &now,
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx, userID)
	logrus.WithFields(logrus.Fields{"user_id": userID, "admin_id": adminID, "coins": coins}).Info("Balance adjusted")
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventTransactionCreated, TransactionID: t.ID, UserID: userID, Status: string(t.Status), Coins: coins})
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventBalanceUpdated, UserID: userID})
	return &t, nil
}

// scope applies the filter to a query
func (f TransactionFilter) scope(db *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.BrandID != 0 {
		db = db.Where("brand_id = ?", f.BrandID)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at < ?", *f.To)
	}
	return db
}

func (s *coinService) ListTransactions(ctx context.Context, f TransactionFilter, p utils.Page) (utils.Paged[domain.CoinTransaction], error) {
	// Count for pagination
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.CoinTransaction{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return utils.Paged[domain.CoinTransaction]{}, err
	}
	// Newest first
	var items []domain.CoinTransaction
	if err := s.db.WithContext(ctx).Scopes(f.scope).Preload("Brand").Order("created_at DESC, id DESC").
		Offset(p.Offset()).Limit(p.PageSize).Find(&items).Error; err != nil {
		return utils.Paged[domain.CoinTransaction]{}, err
	}
	return utils.NewPaged(items, p, total), nil
}

func (s *coinService) GetTransaction(ctx context.Context, id uint) (*domain.CoinTransaction, error) {
	var t domain.CoinTransaction
	if err := s.db.WithContext(ctx).Preload("Brand").Preload("User").First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *coinService) GetUserTransaction(ctx context.Context, userID, id uint) (*domain.CoinTransaction, error) {
	var t domain.CoinTransaction
	if err := s.db.WithContext(ctx).Preload("Brand").Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *coinService) CountStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.CoinTransaction{}).
		Where("status = ? AND created_at < ?", domain.TransactionStatusPending, olderThan).
		Count(&n).Error
	return n, err
}
