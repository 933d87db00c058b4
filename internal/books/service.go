package books

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

// coverStore is the slice of the bucket adapter the catalog needs.
type coverStore interface {
	StoreCover(ctx context.Context, object, contentType string, data []byte) (string, error)
	PDFDownloadURL(pdfURL string) (string, error)
}

// Service owns the catalog: storefront reads plus the admin CRUD surface.
type Service interface {
	List(ctx context.Context, filters Filters) ([]models.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Book, error)
	Create(ctx context.Context, input CreateBookInput) (*models.Book, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*models.Book, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Book, error)
	UploadCover(ctx context.Context, id uuid.UUID, ext, contentType string, data []byte) (*models.Book, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
}

type service struct {
	repo   Repository
	covers coverStore
	logg   *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo Repository, covers coverStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if covers == nil {
		return nil, fmt.Errorf("cover store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, covers: covers, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.Book, error) {
	if filters.Category != nil && !filters.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown age category")
	}
	results, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return results, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.find(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateBookInput) (*models.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown age category")
	}
	if strings.TrimSpace(input.AgeRange) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age range required")
	}

	book := &models.Book{
		Title:         strings.TrimSpace(input.Title),
		Subtitle:      input.Subtitle,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		PDFURL:        input.PDFURL,
		Category:      input.Category,
		AgeRange:      strings.TrimSpace(input.AgeRange),
		Pages:         input.Pages,
		Features:      input.Features,
		IsNew:         input.IsNew,
		IsBestseller:  input.IsBestseller,
		IsActive:      true,
	}
	created, err := s.repo.Create(ctx, book)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
	}

	s.logg.Info(s.logg.WithField(ctx, "book_id", created.ID.String()), "book created")
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*models.Book, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Subtitle != nil {
		updates["subtitle"] = *input.Subtitle
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		updates["original_price"] = *input.OriginalPrice
	}
	if input.PDFURL != nil {
		updates["pdf_url"] = *input.PDFURL
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown age category")
		}
		updates["category"] = *input.Category
	}
	if input.AgeRange != nil {
		updates["age_range"] = *input.AgeRange
	}
	if input.Pages != nil {
		updates["pages"] = *input.Pages
	}
	if input.Features != nil {
		// map-based updates skip the model serializer, so encode by hand
		encoded, err := json.Marshal(input.Features)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode features")
		}
		updates["features"] = string(encoded)
	}
	if input.IsNew != nil {
		updates["is_new"] = *input.IsNew
	}
	if input.IsBestseller != nil {
		updates["is_bestseller"] = *input.IsBestseller
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.applyUpdates(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Deactivate hides a listing from the storefront. Existing orders keep their
// item snapshots, so nothing is ever hard-deleted.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.applyUpdates(ctx, id, map[string]any{"is_active": false}); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// UploadCover stores a cover image in the public assets bucket and points
// the listing at it.
func (s *service) UploadCover(ctx context.Context, id uuid.UUID, ext, contentType string, data []byte) (*models.Book, error) {
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cover image required")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "jpg"
	}
	object := fmt.Sprintf("covers/%s.%s", id, ext)
	coverURL, err := s.covers.StoreCover(ctx, object, contentType, data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store cover image")
	}

	if err := s.applyUpdates(ctx, id, map[string]any{"cover_image_url": coverURL}); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// DownloadURL returns a short-lived signed URL for the book's PDF.
func (s *service) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	book, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if book.PDFURL == nil || *book.PDFURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "book has no pdf")
	}
	url, err := s.covers.PDFDownloadURL(*book.PDFURL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign pdf url")
	}
	return url, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}

func (s *service) applyUpdates(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
	}
	return nil
}
