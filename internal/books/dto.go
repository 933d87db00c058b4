package books

import (
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// CreateBookInput carries a new catalog listing.
type CreateBookInput struct {
	Title         string
	Subtitle      *string
	Description   *string
	Price         int
	OriginalPrice *int
	PDFURL        *string
	Category      enums.AgeCategory
	AgeRange      string
	Pages         *int
	Features      []string
	IsNew         bool
	IsBestseller  bool
}

// UpdateBookInput updates a listing. Nil fields are left untouched.
type UpdateBookInput struct {
	Title         *string
	Subtitle      *string
	Description   *string
	Price         *int
	OriginalPrice *int
	PDFURL        *string
	Category      *enums.AgeCategory
	AgeRange      *string
	Pages         *int
	Features      []string
	IsNew         *bool
	IsBestseller  *bool
	IsActive      *bool
}

// Filters narrows catalog listings. The storefront always filters to active
// titles; the admin console may include inactive ones.
type Filters struct {
	Category        *enums.AgeCategory
	IncludeInactive bool
}
