package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/api/responses"
	"github.com/richrisemansion/ebook-pop/api/validators"
	booksvc "github.com/richrisemansion/ebook-pop/internal/books"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

type createBookRequest struct {
	Title         string   `json:"title" validate:"required"`
	Subtitle      *string  `json:"subtitle,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         int      `json:"price" validate:"required,min=0"`
	OriginalPrice *int     `json:"original_price,omitempty" validate:"omitempty,min=0"`
	PDFURL        *string  `json:"pdf_url,omitempty"`
	Category      string   `json:"category" validate:"required"`
	AgeRange      string   `json:"age_range" validate:"required"`
	Pages         *int     `json:"pages,omitempty" validate:"omitempty,min=1"`
	Features      []string `json:"features,omitempty"`
	IsNew         bool     `json:"is_new"`
	IsBestseller  bool     `json:"is_bestseller"`
}

func (req createBookRequest) toInput() (booksvc.CreateBookInput, error) {
	category, err := enums.ParseAgeCategory(strings.TrimSpace(req.Category))
	if err != nil {
		return booksvc.CreateBookInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return booksvc.CreateBookInput{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		PDFURL:        req.PDFURL,
		Category:      category,
		AgeRange:      req.AgeRange,
		Pages:         req.Pages,
		Features:      req.Features,
		IsNew:         req.IsNew,
		IsBestseller:  req.IsBestseller,
	}, nil
}

type updateBookRequest struct {
	Title         *string  `json:"title,omitempty"`
	Subtitle      *string  `json:"subtitle,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *int     `json:"price,omitempty" validate:"omitempty,min=0"`
	OriginalPrice *int     `json:"original_price,omitempty" validate:"omitempty,min=0"`
	PDFURL        *string  `json:"pdf_url,omitempty"`
	Category      *string  `json:"category,omitempty"`
	AgeRange      *string  `json:"age_range,omitempty"`
	Pages         *int     `json:"pages,omitempty" validate:"omitempty,min=1"`
	Features      []string `json:"features,omitempty"`
	IsNew         *bool    `json:"is_new,omitempty"`
	IsBestseller  *bool    `json:"is_bestseller,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

func (req updateBookRequest) toInput() (booksvc.UpdateBookInput, error) {
	input := booksvc.UpdateBookInput{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		PDFURL:        req.PDFURL,
		AgeRange:      req.AgeRange,
		Pages:         req.Pages,
		Features:      req.Features,
		IsNew:         req.IsNew,
		IsBestseller:  req.IsBestseller,
		IsActive:      req.IsActive,
	}
	if req.Category != nil {
		category, err := enums.ParseAgeCategory(strings.TrimSpace(*req.Category))
		if err != nil {
			return booksvc.UpdateBookInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	return input, nil
}

// AdminBooks lists the full catalog, inactive titles included.
func AdminBooks(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		books, err := svc.List(r.Context(), booksvc.Filters{IncludeInactive: true})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, books)
	}
}

// AdminCreateBook adds a catalog title.
func AdminCreateBook(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		var payload createBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

// AdminUpdateBook patches a catalog title.
func AdminUpdateBook(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}

		var payload updateBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

// AdminDeactivateBook hides a title from the storefront. Listings are never
// deleted because order items snapshot them.
func AdminDeactivateBook(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}

		book, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

// AdminUploadCover stores a cover image in the public assets bucket.
func AdminUploadCover(svc booksvc.Service, slipCfg config.SlipConfig, logg *logger.Logger) http.HandlerFunc {
	maxBytes := int64(slipCfg.MaxUploadMB) << 20
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}

		upload, err := validators.ReadImageUpload(r, "cover", maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.UploadCover(r.Context(), id, upload.Ext, upload.ContentType, upload.Data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}
