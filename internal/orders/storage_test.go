package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/storage/gcs"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(&gcs.Client{}, config.GCSConfig{
		SlipBucket:        "order-slips",
		AssetsBucket:      "book-assets",
		SlipURLExpiry:     168 * time.Hour,
		DownloadURLExpiry: time.Hour,
	})
	require.NoError(t, err)
	return storage
}

func TestNewStorageValidation(t *testing.T) {
	_, err := NewStorage(nil, config.GCSConfig{SlipBucket: "a", AssetsBucket: "b"})
	assert.Error(t, err)

	_, err = NewStorage(&gcs.Client{}, config.GCSConfig{SlipBucket: "", AssetsBucket: "b"})
	assert.Error(t, err)
}

func TestSlipViewURLRejectsForeignURLs(t *testing.T) {
	storage := testStorage(t)

	_, err := storage.SlipViewURL("https://example.com/slip.jpg")
	assert.Error(t, err)

	_, err = storage.SlipViewURL("https://storage.googleapis.com/some-other-bucket/slip.jpg")
	assert.Error(t, err)
}

func TestPDFDownloadURLPassesThroughExternalURLs(t *testing.T) {
	storage := testStorage(t)

	url, err := storage.PDFDownloadURL("https://cdn.example.com/books/sample.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/books/sample.pdf", url)
}

func TestCoverURL(t *testing.T) {
	storage := testStorage(t)
	assert.Equal(t,
		"https://storage.googleapis.com/book-assets/covers/toddler.jpg",
		storage.CoverURL("covers/toddler.jpg"))
}
