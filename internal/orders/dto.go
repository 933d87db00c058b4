package orders

import (
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// CreateOrderInput carries the materialized cart a checkout submits.
type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Items         models.OrderItems
}

// SlipUpload carries the payment evidence a customer submits after transfer.
type SlipUpload struct {
	Data         []byte
	ContentType  string
	Ext          string
	TransferDate string
	TransferTime string
}

// SlipDetails is the persisted form of a slip upload. All three fields are
// written together with the paid status or not at all.
type SlipDetails struct {
	ImageURL     string
	TransferDate string
	TransferTime string
}

// Filters narrows order listings.
type Filters struct {
	Status *enums.OrderStatus
	Limit  int
}

// Stats is the admin dashboard funnel summary. Revenue counts money whose
// payment has been verified, whether or not PDFs went out yet.
type Stats struct {
	PendingVerification int64 `json:"pending_verification"`
	Verified            int64 `json:"verified"`
	Completed           int64 `json:"completed"`
	Revenue             int64 `json:"revenue"`
}

// DownloadLink pairs a purchased title with a fetchable PDF location.
type DownloadLink struct {
	Title string
	URL   string
}
