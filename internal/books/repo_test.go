package books

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

func setupBooksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  subtitle TEXT,
  description TEXT,
  price INTEGER NOT NULL,
  original_price INTEGER,
  cover_image_url TEXT,
  pdf_url TEXT,
  category TEXT NOT NULL,
  age_range TEXT NOT NULL,
  pages INTEGER,
  features TEXT,
  is_new INTEGER NOT NULL DEFAULT 0,
  is_bestseller INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func testBook(title string, category enums.AgeCategory, active bool) *models.Book {
	pdf := "books/" + title + ".pdf"
	return &models.Book{
		ID:       uuid.New(),
		Title:    title,
		Price:    299,
		PDFURL:   &pdf,
		Category: category,
		AgeRange: "3-6 ปี",
		Features: []string{"ภาพประกอบสี่สี", "แบบฝึกหัดท้ายบท"},
		IsActive: active,
	}
}

func TestBookRepositoryCreateAndFind(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testBook("toddler", enums.AgeCategoryPreschool, true))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "toddler", found.Title)
	assert.Equal(t, enums.AgeCategoryPreschool, found.Category)
	assert.Equal(t, []string{"ภาพประกอบสี่สี", "แบบฝึกหัดท้ายบท"}, found.Features)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBookRepositoryListFilters(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seed := []*models.Book{
		testBook("a", enums.AgeCategoryBaby, true),
		testBook("b", enums.AgeCategoryPreschool, true),
		testBook("c", enums.AgeCategoryPreschool, false),
	}
	for _, book := range seed {
		_, err := repo.Create(ctx, book)
		require.NoError(t, err)
	}

	active, err := repo.List(ctx, Filters{})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := repo.List(ctx, Filters{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	preschool := enums.AgeCategoryPreschool
	filtered, err := repo.List(ctx, Filters{Category: &preschool})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].Title)
}

func TestBookRepositoryUpdate(t *testing.T) {
	db := setupBooksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testBook("d", enums.AgeCategoryElementary, true))
	require.NoError(t, err)

	err = repo.Update(ctx, created.ID, map[string]any{"price": 379, "is_active": false})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 379, reloaded.Price)
	assert.False(t, reloaded.IsActive)

	err = repo.Update(ctx, uuid.New(), map[string]any{"price": 100})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
