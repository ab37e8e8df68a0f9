package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubcorra/internal/domain"
	"clubcorra/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) result(args mock.Arguments) (*service.AuthResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockAuthService) VerifyRegistration(ctx context.Context, mobile, code string) (*service.AuthResult, error) {
	return m.result(m.Called(ctx, mobile, code))
}

func (m *MockAuthService) RequestLoginOTP(ctx context.Context, mobile string) error {
	return m.Called(ctx, mobile).Error(0)
}

func (m *MockAuthService) VerifyLogin(ctx context.Context, mobile, code string) (*service.AuthResult, error) {
	return m.result(m.Called(ctx, mobile, code))
}

func (m *MockAuthService) LoginWithEmail(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return m.result(m.Called(ctx, email, password))
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, idToken string) (*service.AuthResult, error) {
	return m.result(m.Called(ctx, idToken))
}

func (m *MockAuthService) LinkGoogle(ctx context.Context, userID uint, idToken string) (*domain.AuthProvider, error) {
	args := m.Called(ctx, userID, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthProvider), args.Error(1)
}

func (m *MockAuthService) AdminLogin(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return m.result(m.Called(ctx, email, password))
}
