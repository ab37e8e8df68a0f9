// Package storage keeps bill receipts in an S3-compatible object store.
package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions describe an upload. Size must be exact, or -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"-"`
}

// Storage is the object store used for receipts
type Storage interface {
	// Put streams r to key
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// List returns every object whose key starts with prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Delete removes key
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL for key
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
