package service

import (
	"bytes"         // Buffered head of the upload
	"context"       // Request scoped context
	"errors"        // Short read checks
	"io"            // Streaming uploads
	"path/filepath" // Original file name
	"strings"       // Type checks
	"time"          // Link expiry and purge cutoffs

	"github.com/gabriel-vasile/mimetype" // Content sniffing
	"github.com/google/uuid"             // Object keys
	"github.com/sirupsen/logrus"         // Logging
	"gorm.io/gorm"                       // ORM

	"clubcorra/internal/domain"  // Transactions referencing receipts
	"clubcorra/internal/storage" // Object store
)

const (
	MaxReceiptSize   = 5 << 20 // 5 MiB
	ReceiptURLExpiry = 15 * time.Minute
	receiptRoot      = "receipts/"
	sniffLen         = 3072 // Bytes read to detect the real file type
	purgeBatch       = 500  // Keys checked per query when purging
)

// ReceiptService stores bill receipts and hands out download links
type ReceiptService interface {
	Upload(ctx context.Context, userID uint, r io.Reader, filename, contentType string, size int64) (*storage.ObjectInfo, error)
	// ReceiptURL returns a presigned link to the receipt of a transaction
	ReceiptURL(ctx context.Context, transactionID uint) (string, error)
	// PurgeOrphans deletes receipts uploaded before cutoff that no transaction references
	PurgeOrphans(ctx context.Context, cutoff time.Time) (int, error)
}

type receiptService struct {
	db    *gorm.DB
	store storage.Storage
}

// NewReceiptService constructs a ReceiptService. store may be nil when storage is not configured.
func NewReceiptService(db *gorm.DB, store storage.Storage) ReceiptService {
	return &receiptService{db: db, store: store}
}

// allowedReceiptType reports whether the detected type is an image or a PDF
func allowedReceiptType(mt *mimetype.MIME) bool {
	ct := strings.ToLower(strings.SplitN(mt.String(), ";", 2)[0])
	return strings.HasPrefix(ct, "image/") || mt.Is("application/pdf")
}

func (s *receiptService) Upload(ctx context.Context, userID uint, r io.Reader, filename, _ string, size int64) (*storage.ObjectInfo, error) {
	// Reject early when storage is not configured
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if r == nil || size <= 0 {
		return nil, invalid("file", "is required")
	}
	if size > MaxReceiptSize {
		return nil, invalid("file", "must be at most 5 MiB")
	}

	// The declared Content-Type is ignored; the type comes from the bytes
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	if !allowedReceiptType(mt) {
		return nil, invalid("file", "must be an image or a PDF")
	}

	// Key carries the owner so submissions can check it, extension follows the real type
	key := ReceiptPrefix(userID) + uuid.New().String() + mt.Extension()
	info, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), r), storage.PutOptions{
		Size:        size,
		ContentType: mt.String(),
		Metadata:    map[string]string{"original-filename": filepath.Base(filename)},
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "key": key, "size": size, "type": mt.String()}).Info("Receipt uploaded")
	return &info, nil
}

func (s *receiptService) ReceiptURL(ctx context.Context, transactionID uint) (string, error) {
	if s.store == nil {
		return "", ErrStorageUnavailable
	}
	// Only the key is needed
	var t domain.CoinTransaction
	if err := s.db.WithContext(ctx).Select("id", "receipt_key").First(&t, transactionID).Error; err != nil {
		return "", translate(err)
	}
	if t.ReceiptKey == "" {
		return "", ErrNotFound // Submitted without a receipt
	}
	return s.store.PresignGet(ctx, t.ReceiptKey, ReceiptURLExpiry)
}

func (s *receiptService) PurgeOrphans(ctx context.Context, cutoff time.Time) (int, error) {
	// Nothing to purge without a store
	if s.store == nil {
		return 0, nil
	}
	objs, err := s.store.List(ctx, receiptRoot)
	if err != nil {
		return 0, err
	}
	// Recent uploads may still be attached to a request being filled in
	var candidates []string
	for _, o := range objs {
		if o.LastModified.Before(cutoff) {
			candidates = append(candidates, o.Key)
		}
	}

	deleted := 0
	for start := 0; start < len(candidates); start += purgeBatch {
		batch := candidates[start:min(start+purgeBatch, len(candidates))]
		// Keys referenced by any transaction are kept
		var used []string
		if err := s.db.WithContext(ctx).Model(&domain.CoinTransaction{}).
			Where("receipt_key IN ?", batch).
			Pluck("receipt_key", &used).Error; err != nil {
			return deleted, err
		}
		keep := make(map[string]struct{}, len(used))
		for _, k := range used {
			keep[k] = struct{}{}
		}
		for _, key := range batch {
			if _, ok := keep[key]; ok {
				continue
			}
			if err := s.store.Delete(ctx, key); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	if deleted > 0 {
		logrus.WithFields(logrus.Fields{"deleted": deleted, "checked": len(candidates)}).Info("Purged orphaned receipts")
	}
	return deleted, nil
}
