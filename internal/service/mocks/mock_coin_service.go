package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubcorra/internal/domain"
	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

type MockCoinService struct {
	mock.Mock
}

func (m *MockCoinService) tx(args mock.Arguments) (*domain.CoinTransaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoinTransaction), args.Error(1)
}

func (m *MockCoinService) Balance(ctx context.Context, userID uint) (*domain.CoinBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoinBalance), args.Error(1)
}

func (m *MockCoinService) GrantWelcomeBonus(ctx context.Context, userID uint) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, userID))
}

func (m *MockCoinService) SubmitRewardRequest(ctx context.Context, userID uint, in service.RewardRequestInput) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, userID, in))
}

func (m *MockCoinService) Approve(ctx context.Context, id, adminID uint, notes string) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, id, adminID, notes))
}

func (m *MockCoinService) Reject(ctx context.Context, id, adminID uint, notes string) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, id, adminID, notes))
}

func (m *MockCoinService) MarkProcessed(ctx context.Context, id, adminID uint) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, id, adminID))
}

func (m *MockCoinService) MarkPaid(ctx context.Context, id, adminID uint, in service.PaymentInput) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, id, adminID, in))
}

func (m *MockCoinService) Adjust(ctx context.Context, userID, adminID uint, coins int64, reason string) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, userID, adminID, coins, reason))
}

func (m *MockCoinService) ListTransactions(ctx context.Context, f service.TransactionFilter, p utils.Page) (utils.Paged[domain.CoinTransaction], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(utils.Paged[domain.CoinTransaction]), args.Error(1)
}

func (m *MockCoinService) GetTransaction(ctx context.Context, id uint) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, id))
}

func (m *MockCoinService) GetUserTransaction(ctx context.Context, userID, id uint) (*domain.CoinTransaction, error) {
	return m.tx(m.Called(ctx, userID, id))
}

func (m *MockCoinService) CountStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
