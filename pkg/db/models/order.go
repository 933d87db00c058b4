package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// OrderItem is a point-in-time snapshot of a purchased book. It is copied out
// of the catalog when the order is created, so later price or title edits do
// not touch existing orders.
type OrderItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	PDFURL   string `json:"pdf_url"`
}

// Subtotal returns price times quantity for the line.
func (i OrderItem) Subtotal() int {
	return i.Price * i.Quantity
}

// OrderItems is the JSONB-persisted list of order line snapshots.
type OrderItems []OrderItem

// Total sums the line subtotals.
func (items OrderItems) Total() int {
	total := 0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Count sums the line quantities.
func (items OrderItems) Count() int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// Order is the central purchase entity. Orders are never deleted;
// cancellation is a status value.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber   string            `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key" json:"order_number"`
	CustomerName  string            `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerEmail string            `gorm:"column:customer_email;not null" json:"customer_email"`
	CustomerPhone string            `gorm:"column:customer_phone;not null" json:"customer_phone"`
	Items         OrderItems        `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	TotalAmount   int               `gorm:"column:total_amount;not null" json:"total_amount"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	SlipImageURL  *string           `gorm:"column:slip_image_url" json:"slip_image_url"`
	TransferDate  *string           `gorm:"column:transfer_date" json:"transfer_date"`
	TransferTime  *string           `gorm:"column:transfer_time" json:"transfer_time"`
	PDFsSent      bool              `gorm:"column:pdfs_sent;not null;default:false" json:"pdfs_sent"`
	AdminNotes    *string           `gorm:"column:admin_notes" json:"admin_notes"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the GORM table name.
func (Order) TableName() string {
	return "orders"
}

// HasSlip reports whether payment evidence has been recorded. The three slip
// fields are always set together.
func (o *Order) HasSlip() bool {
	return o.SlipImageURL != nil && o.TransferDate != nil && o.TransferTime != nil
}
