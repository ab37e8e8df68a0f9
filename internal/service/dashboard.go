package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

// DashboardCacheKey holds the cached admin summary
const DashboardCacheKey = "dashboard:summary"

const dashboardCacheTTL = 30 * time.Second

// DashboardSummary is the admin overview
type DashboardSummary struct {
	ByStatus           map[domain.TransactionStatus]int64 `json:"by_status"`
	PendingRequests    int64                              `json:"pending_requests"`
	UsersTotal         int64                              `json:"users_total"`
	UsersActive        int64                              `json:"users_active"`
	CoinsInCirculation int64                              `json:"coins_in_circulation"`
	TotalEarned        int64                              `json:"total_earned"`
	TotalRedeemed      int64                              `json:"total_redeemed"`
	GeneratedAt        time.Time                          `json:"generated_at"`
}

// DashboardService aggregates platform counters
type DashboardService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}

type dashboardService struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewDashboardService constructs a DashboardService
func NewDashboardService(db *gorm.DB, cache *utils.Cache) DashboardService {
	return &dashboardService{db: db, cache: cache}
}

func (s *dashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	var cached DashboardSummary
	if ok, err := s.cache.Get(ctx, DashboardCacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	db := s.db.WithContext(ctx)
	sum := DashboardSummary{ByStatus: make(map[domain.TransactionStatus]int64, len(domain.AllTransactionStatuses))}
	for _, st := range domain.AllTransactionStatuses {
		sum.ByStatus[st] = 0
	}

	var rows []struct {
		Status domain.TransactionStatus
		N      int64
	}
	if err := db.Model(&domain.CoinTransaction{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		sum.ByStatus[r.Status] = r.N
	}
	if err := db.Model(&domain.CoinTransaction{}).
		Where("type = ? AND status = ?", domain.TransactionTypeRewardRequest, domain.TransactionStatusPending).
		Count(&sum.PendingRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.User{}).Count(&sum.UsersTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.User{}).Where("status = ?", domain.UserStatusActive).Count(&sum.UsersActive).Error; err != nil {
		return nil, err
	}
	var totals struct {
		Balance       int64
		TotalEarned   int64
		TotalRedeemed int64
	}
	if err := db.Model(&domain.CoinBalance{}).
		Select("COALESCE(SUM(balance), 0) AS balance, COALESCE(SUM(total_earned), 0) AS total_earned, COALESCE(SUM(total_redeemed), 0) AS total_redeemed").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	sum.CoinsInCirculation = totals.Balance
	sum.TotalEarned = totals.TotalEarned
	sum.TotalRedeemed = totals.TotalRedeemed
	sum.GeneratedAt = time.Now().UTC()

	_ = s.cache.Set(ctx, DashboardCacheKey, sum, dashboardCacheTTL)
	return &sum, nil
}
