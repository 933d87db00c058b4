package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/storage/gcs"
)

const publicStorageHost = "https://storage.googleapis.com/"

// Storage adapts the GCS client to the storefront's two buckets: slips are
// uploaded by customers and viewed by the operator through signed URLs, PDFs
// live in the assets bucket and are only ever handed out signed.
type Storage struct {
	client *gcs.Client
	cfg    config.GCSConfig
	now    func() time.Time
}

// NewStorage builds the bucket adapter.
func NewStorage(client *gcs.Client, cfg config.GCSConfig) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if cfg.SlipBucket == "" || cfg.AssetsBucket == "" {
		return nil, fmt.Errorf("slip and assets buckets required")
	}
	return &Storage{client: client, cfg: cfg, now: time.Now}, nil
}

// StoreSlip uploads payment evidence and returns its public URL. Object keys
// carry the upload instant, so a re-upload adds a new object and the order
// row points at the newest one.
func (s *Storage) StoreSlip(ctx context.Context, orderID, ext, contentType string, data []byte) (string, error) {
	if orderID == "" {
		return "", fmt.Errorf("order id required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("slip data required")
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "jpg"
	}

	object := fmt.Sprintf("%s-%d.%s", orderID, s.now().UnixMilli(), ext)
	if err := s.client.Upload(ctx, s.cfg.SlipBucket, object, contentType, data); err != nil {
		return "", fmt.Errorf("uploading slip: %w", err)
	}
	return s.client.PublicURL(s.cfg.SlipBucket, object), nil
}

// SlipViewURL converts a stored slip URL into a long-lived signed URL the
// operator (and Telegram's photo fetcher) can open. The slip bucket is not
// publicly readable.
func (s *Storage) SlipViewURL(slipURL string) (string, error) {
	object, ok := s.objectInBucket(slipURL, s.cfg.SlipBucket)
	if !ok {
		return "", fmt.Errorf("slip url %q is not in bucket %q", slipURL, s.cfg.SlipBucket)
	}
	return s.client.SignedURL(s.cfg.SlipBucket, object, s.cfg.SlipURLExpiry)
}

// PDFDownloadURL returns a short-lived signed URL for a purchased PDF.
// Catalog rows may carry either a bare object path in the assets bucket or a
// full URL; external URLs pass through untouched.
func (s *Storage) PDFDownloadURL(pdfURL string) (string, error) {
	if pdfURL == "" {
		return "", fmt.Errorf("pdf url required")
	}
	if strings.HasPrefix(pdfURL, "http://") || strings.HasPrefix(pdfURL, "https://") {
		object, ok := s.objectInBucket(pdfURL, s.cfg.AssetsBucket)
		if !ok {
			return pdfURL, nil
		}
		return s.client.SignedURL(s.cfg.AssetsBucket, object, s.cfg.DownloadURLExpiry)
	}
	return s.client.SignedURL(s.cfg.AssetsBucket, strings.TrimPrefix(pdfURL, "/"), s.cfg.DownloadURLExpiry)
}

// CoverURL returns the public URL for an uploaded cover object. Covers are
// world-readable.
func (s *Storage) CoverURL(object string) string {
	return s.client.PublicURL(s.cfg.AssetsBucket, object)
}

// StoreCover uploads a cover image into the assets bucket and returns its
// public URL.
func (s *Storage) StoreCover(ctx context.Context, object, contentType string, data []byte) (string, error) {
	if object == "" {
		return "", fmt.Errorf("object name required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("cover data required")
	}
	if err := s.client.Upload(ctx, s.cfg.AssetsBucket, object, contentType, data); err != nil {
		return "", fmt.Errorf("uploading cover: %w", err)
	}
	return s.client.PublicURL(s.cfg.AssetsBucket, object), nil
}

func (s *Storage) objectInBucket(url, bucket string) (string, bool) {
	prefix := publicStorageHost + bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	object := strings.TrimPrefix(url, prefix)
	if object == "" {
		return "", false
	}
	return object, true
}
