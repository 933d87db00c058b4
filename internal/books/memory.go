package books

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// memoryRepository backs demo deployments that run without Postgres.
type memoryRepository struct {
	mu    sync.RWMutex
	books map[uuid.UUID]*models.Book
}

// NewMemoryRepository builds an in-memory catalog. When seed is true it is
// pre-populated with the demo titles so the storefront has something to sell.
func NewMemoryRepository(seed bool) Repository {
	repo := &memoryRepository{books: map[uuid.UUID]*models.Book{}}
	if seed {
		for _, book := range demoBooks() {
			repo.books[book.ID] = book
		}
	}
	return repo
}

func (r *memoryRepository) WithTx(tx *gorm.DB) Repository {
	return r
}

func (r *memoryRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	stored := cloneBook(book)
	r.books[stored.ID] = stored
	return cloneBook(stored), nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneBook(book), nil
}

func (r *memoryRepository) List(ctx context.Context, filters Filters) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]models.Book, 0, len(r.books))
	for _, book := range r.books {
		if !filters.IncludeInactive && !book.IsActive {
			continue
		}
		if filters.Category != nil && book.Category != *filters.Category {
			continue
		}
		results = append(results, *cloneBook(book))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (r *memoryRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	applyBookUpdates(book, updates)
	book.UpdatedAt = time.Now().UTC()
	return nil
}

// applyBookUpdates mirrors the column-keyed update maps the SQL repository
// receives from the service.
func applyBookUpdates(book *models.Book, updates map[string]any) {
	for column, value := range updates {
		switch column {
		case "title":
			book.Title = value.(string)
		case "subtitle":
			book.Subtitle = strPtr(value)
		case "description":
			book.Description = strPtr(value)
		case "price":
			book.Price = value.(int)
		case "original_price":
			book.OriginalPrice = intPtr(value)
		case "cover_image_url":
			book.CoverImageURL = strPtr(value)
		case "pdf_url":
			book.PDFURL = strPtr(value)
		case "category":
			book.Category = value.(enums.AgeCategory)
		case "age_range":
			book.AgeRange = value.(string)
		case "pages":
			book.Pages = intPtr(value)
		case "features":
			var features []string
			if err := json.Unmarshal([]byte(value.(string)), &features); err == nil {
				book.Features = features
			}
		case "is_new":
			book.IsNew = value.(bool)
		case "is_bestseller":
			book.IsBestseller = value.(bool)
		case "is_active":
			book.IsActive = value.(bool)
		}
	}
}

func strPtr(value any) *string {
	s := value.(string)
	return &s
}

func intPtr(value any) *int {
	n := value.(int)
	return &n
}

func cloneBook(book *models.Book) *models.Book {
	clone := *book
	clone.Features = append([]string{}, book.Features...)
	if book.Subtitle != nil {
		v := *book.Subtitle
		clone.Subtitle = &v
	}
	if book.Description != nil {
		v := *book.Description
		clone.Description = &v
	}
	if book.OriginalPrice != nil {
		v := *book.OriginalPrice
		clone.OriginalPrice = &v
	}
	if book.CoverImageURL != nil {
		v := *book.CoverImageURL
		clone.CoverImageURL = &v
	}
	if book.PDFURL != nil {
		v := *book.PDFURL
		clone.PDFURL = &v
	}
	if book.Pages != nil {
		v := *book.Pages
		clone.Pages = &v
	}
	return &clone
}

func demoBooks() []*models.Book {
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)
	titles := []struct {
		id       string
		title    string
		subtitle string
		price    int
		original int
		category enums.AgeCategory
		ageRange string
		pages    int
		features []string
		isNew    bool
		isBest   bool
		pdf      string
	}{
		{
			id:       "aaaaaaa1-0000-4000-8000-000000000001",
			title:    "เข้าใจลูกวัยเตาะแตะ",
			subtitle: "คู่มือพ่อแม่มือใหม่",
			price:    299, original: 399,
			category: enums.AgeCategoryBaby, ageRange: "0-3 ปี", pages: 120,
			features: []string{"เทคนิครับมืออาการงอแง", "ตารางพัฒนาการรายเดือน"},
			isBest:   true,
			pdf:      "https://storage.googleapis.com/book-assets/pdfs/toddler-guide.pdf",
		},
		{
			id:       "aaaaaaa1-0000-4000-8000-000000000002",
			title:    "นิทานก่อนนอนสร้างนิสัย",
			price:    249, original: 0,
			category: enums.AgeCategoryPreschool, ageRange: "3-6 ปี", pages: 96,
			features: []string{"นิทาน 12 เรื่องพร้อมข้อคิด"},
			isNew:    true,
			pdf:      "https://storage.googleapis.com/book-assets/pdfs/bedtime-stories.pdf",
		},
		{
			id:       "aaaaaaa1-0000-4000-8000-000000000003",
			title:    "จิตวิทยาเด็กประถม",
			subtitle: "เมื่อลูกเริ่มมีโลกของตัวเอง",
			price:    379, original: 450,
			category: enums.AgeCategoryElementary, ageRange: "6-12 ปี", pages: 210,
			features: []string{"รับมือการบ้านและหน้าจอ", "สื่อสารกับครูอย่างได้ผล"},
			isBest:   true,
			pdf:      "https://storage.googleapis.com/book-assets/pdfs/elementary-minds.pdf",
		},
		{
			id:       "aaaaaaa1-0000-4000-8000-000000000004",
			title:    "เลี้ยงลูกวัยรุ่นอย่างเข้าใจ",
			price:    429, original: 0,
			category: enums.AgeCategoryPreteen, ageRange: "10-14 ปี", pages: 185,
			features: []string{"พูดเรื่องยากให้ลูกฟัง"},
			pdf:      "https://storage.googleapis.com/book-assets/pdfs/preteen-connect.pdf",
		},
	}

	books := make([]*models.Book, 0, len(titles))
	for i, t := range titles {
		book := &models.Book{
			ID:           uuid.MustParse(t.id),
			Title:        t.title,
			Price:        t.price,
			Category:     t.category,
			AgeRange:     t.ageRange,
			Features:     t.features,
			IsNew:        t.isNew,
			IsBestseller: t.isBest,
			IsActive:     true,
			CreatedAt:    base.Add(time.Duration(i) * 24 * time.Hour),
			UpdatedAt:    base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if t.subtitle != "" {
			subtitle := t.subtitle
			book.Subtitle = &subtitle
		}
		if t.original > 0 {
			original := t.original
			book.OriginalPrice = &original
		}
		if t.pages > 0 {
			pages := t.pages
			book.Pages = &pages
		}
		if t.pdf != "" {
			pdf := t.pdf
			book.PDFURL = &pdf
		}
		books = append(books, book)
	}
	return books
}
