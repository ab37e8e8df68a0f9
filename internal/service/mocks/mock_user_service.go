package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubcorra/internal/domain"
	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uint, in service.ProfileInput) (*domain.UserProfile, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockUserService) UpdatePaymentDetails(ctx context.Context, id uint, in service.PaymentDetailsInput) (*domain.PaymentDetails, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentDetails), args.Error(1)
}

func (m *MockUserService) SetPassword(ctx context.Context, id uint, password string) error {
	return m.Called(ctx, id, password).Error(0)
}

func (m *MockUserService) RequestEmailVerification(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) ConfirmEmailVerification(ctx context.Context, id uint, code string) error {
	return m.Called(ctx, id, code).Error(0)
}

func (m *MockUserService) List(ctx context.Context, f service.UserFilter, p utils.Page) (utils.Paged[domain.User], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(utils.Paged[domain.User]), args.Error(1)
}

func (m *MockUserService) SetStatus(ctx context.Context, id uint, status domain.UserStatus) (*domain.User, error) {
	return m.user(m.Called(ctx, id, status))
}

func (m *MockUserService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}
