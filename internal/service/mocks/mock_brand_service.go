package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubcorra/internal/domain"
	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

type MockBrandService struct {
	mock.Mock
}

func (m *MockBrandService) brand(args mock.Arguments) (*domain.Brand, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Brand), args.Error(1)
}

func (m *MockBrandService) List(ctx context.Context, f service.BrandFilter, p utils.Page) (utils.Paged[domain.Brand], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(utils.Paged[domain.Brand]), args.Error(1)
}

func (m *MockBrandService) Get(ctx context.Context, id uint, includeInactive bool) (*domain.Brand, error) {
	return m.brand(m.Called(ctx, id, includeInactive))
}

func (m *MockBrandService) Create(ctx context.Context, in service.BrandInput) (*domain.Brand, error) {
	return m.brand(m.Called(ctx, in))
}

func (m *MockBrandService) Update(ctx context.Context, id uint, in service.BrandInput) (*domain.Brand, error) {
	return m.brand(m.Called(ctx, id, in))
}

func (m *MockBrandService) SetActive(ctx context.Context, id uint, active bool) (*domain.Brand, error) {
	return m.brand(m.Called(ctx, id, active))
}

func (m *MockBrandService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}
