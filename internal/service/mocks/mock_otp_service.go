package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubcorra/internal/domain"
)

type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Issue(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) error {
	return m.Called(ctx, identifier, channel, purpose).Error(0)
}

func (m *MockOTPService) Verify(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error {
	return m.Called(ctx, identifier, purpose, code).Error(0)
}

func (m *MockOTPService) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
