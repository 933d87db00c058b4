package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// Book represents a catalog listing for a digital (PDF) title. Read-mostly:
// the storefront copies id/title/price/pdf_url into the cart at add time.
type Book struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title         string            `gorm:"column:title;not null" json:"title"`
	Subtitle      *string           `gorm:"column:subtitle" json:"subtitle"`
	Description   *string           `gorm:"column:description" json:"description"`
	Price         int               `gorm:"column:price;not null" json:"price"`
	OriginalPrice *int              `gorm:"column:original_price" json:"original_price"`
	CoverImageURL *string           `gorm:"column:cover_image_url" json:"cover_image_url"`
	PDFURL        *string           `gorm:"column:pdf_url" json:"pdf_url"`
	Category      enums.AgeCategory `gorm:"column:category;type:text;not null" json:"category"`
	AgeRange      string            `gorm:"column:age_range;not null" json:"age_range"`
	Pages         *int              `gorm:"column:pages" json:"pages"`
	Features      []string          `gorm:"column:features;type:jsonb;serializer:json" json:"features"`
	IsNew         bool              `gorm:"column:is_new;not null;default:false" json:"is_new"`
	IsBestseller  bool              `gorm:"column:is_bestseller;not null;default:false" json:"is_bestseller"`
	IsActive      bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the GORM table name.
func (Book) TableName() string {
	return "books"
}
