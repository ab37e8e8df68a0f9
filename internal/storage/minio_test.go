package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"clubcorra/internal/config"
)

func TestNewMinIOValidatesConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewMinIO(ctx, config.MinIOConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewMinIO(ctx, config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewMinIO(ctx, config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"})
	assert.ErrorContains(t, err, "bucket")
}
