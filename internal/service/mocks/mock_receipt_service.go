package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"clubcorra/internal/storage"
)

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Upload(ctx context.Context, userID uint, r io.Reader, filename, contentType string, size int64) (*storage.ObjectInfo, error) {
	args := m.Called(ctx, userID, r, filename, contentType, size)
	info, _ := args.Get(0).(*storage.ObjectInfo)
	return info, args.Error(1)
}

func (m *MockReceiptService) ReceiptURL(ctx context.Context, transactionID uint) (string, error) {
	args := m.Called(ctx, transactionID)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptService) PurgeOrphans(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}
