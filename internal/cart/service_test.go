package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/richrisemansion/ebook-pop/internal/books"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubStore) CartKey(namespace, sessionID string) string {
	return "pop:cart:" + namespace + ":" + sessionID
}

type stubCatalog struct {
	books map[uuid.UUID]*models.Book
}

func (s *stubCatalog) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, ok := s.books[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}
	return book, nil
}

func (s *stubCatalog) List(ctx context.Context, filters books.Filters) ([]models.Book, error) {
	panic("not implemented")
}

func (s *stubCatalog) Create(ctx context.Context, input books.CreateBookInput) (*models.Book, error) {
	panic("not implemented")
}

func (s *stubCatalog) Update(ctx context.Context, id uuid.UUID, input books.UpdateBookInput) (*models.Book, error) {
	panic("not implemented")
}

func (s *stubCatalog) Deactivate(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	panic("not implemented")
}

func (s *stubCatalog) UploadCover(ctx context.Context, id uuid.UUID, ext, contentType string, data []byte) (*models.Book, error) {
	panic("not implemented")
}

func (s *stubCatalog) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	panic("not implemented")
}

func catalogBook(title string, price int, active bool) *models.Book {
	pdf := "books/" + title + ".pdf"
	return &models.Book{
		ID:       uuid.New(),
		Title:    title,
		Price:    price,
		PDFURL:   &pdf,
		Category: enums.AgeCategoryPreschool,
		AgeRange: "3-6 ปี",
		IsActive: active,
	}
}

func newCartService(t *testing.T, listed ...*models.Book) (Service, *stubStore) {
	t.Helper()
	store := newStubStore()
	keeper, err := NewKeeper(store)
	if err != nil {
		t.Fatalf("new keeper: %v", err)
	}
	catalog := &stubCatalog{books: map[uuid.UUID]*models.Book{}}
	for _, book := range listed {
		catalog.books[book.ID] = book
	}
	svc, err := NewService(keeper, catalog, logger.New(logger.Options{ServiceName: "cart-test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestAddItemAndTotals(t *testing.T) {
	toddler := catalogBook("toddler", 299, true)
	elementary := catalogBook("elementary", 379, true)
	svc, _ := newCartService(t, toddler, elementary)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", toddler.ID, 1); err != nil {
		t.Fatalf("add toddler: %v", err)
	}
	current, err := svc.AddItem(ctx, "sess-1", elementary.ID, 2)
	if err != nil {
		t.Fatalf("add elementary: %v", err)
	}

	if current.TotalItems() != 3 {
		t.Fatalf("expected 3 items, got %d", current.TotalItems())
	}
	if current.TotalPrice() != 1057 {
		t.Fatalf("expected total 1057, got %d", current.TotalPrice())
	}
}

func TestAddSameItemIncrementsQuantity(t *testing.T) {
	toddler := catalogBook("toddler", 299, true)
	svc, _ := newCartService(t, toddler)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", toddler.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	current, err := svc.AddItem(ctx, "sess-1", toddler.ID, 2)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}

	if len(current.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(current.Items))
	}
	if current.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", current.Items[0].Quantity)
	}
}

func TestAddInactiveBookRejected(t *testing.T) {
	hidden := catalogBook("hidden", 299, false)
	svc, _ := newCartService(t, hidden)

	_, err := svc.AddItem(context.Background(), "sess-1", hidden.ID, 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	toddler := catalogBook("toddler", 299, true)
	svc, _ := newCartService(t, toddler)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", toddler.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	current, err := svc.UpdateQuantity(ctx, "sess-1", toddler.ID.String(), 0)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if !current.IsEmpty() {
		t.Fatal("expected empty cart")
	}
}

func TestRemoveAbsentItemIsNoOp(t *testing.T) {
	toddler := catalogBook("toddler", 299, true)
	svc, _ := newCartService(t, toddler)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", toddler.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	current, err := svc.RemoveItem(ctx, "sess-1", uuid.NewString())
	if err != nil {
		t.Fatalf("removing an absent item must not error, got %v", err)
	}
	if len(current.Items) != 1 {
		t.Fatalf("cart must be unchanged, got %d items", len(current.Items))
	}

	current, err = svc.RemoveItem(ctx, "sess-1", toddler.ID.String())
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !current.IsEmpty() {
		t.Fatal("expected empty cart after removing the only line")
	}
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	svc, _ := newCartService(t)

	_, err := svc.UpdateQuantity(context.Background(), "sess-1", uuid.NewString(), 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetCustomerTrims(t *testing.T) {
	svc, _ := newCartService(t)

	current, err := svc.SetCustomer(context.Background(), "sess-1", Customer{
		Name:  "  สมชาย ทดสอบ ",
		Email: " somchai@example.com ",
		Phone: " 089-111-2222 ",
	})
	if err != nil {
		t.Fatalf("set customer: %v", err)
	}
	if current.Customer.Name != "สมชาย ทดสอบ" {
		t.Fatalf("expected trimmed name, got %q", current.Customer.Name)
	}
	if current.Customer.Email != "somchai@example.com" {
		t.Fatalf("expected trimmed email, got %q", current.Customer.Email)
	}
}

func TestCartPersistsAcrossLoads(t *testing.T) {
	toddler := catalogBook("toddler", 299, true)
	svc, _ := newCartService(t, toddler)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", toddler.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded, err := svc.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.TotalItems() != 1 {
		t.Fatalf("expected persisted cart, got %d items", reloaded.TotalItems())
	}

	other, err := svc.Get(ctx, "sess-2")
	if err != nil {
		t.Fatalf("get other session: %v", err)
	}
	if !other.IsEmpty() {
		t.Fatal("expected sessions to be isolated")
	}
}

func TestClearDropsCart(t *testing.T) {
	toddler := catalogBook("toddler", 299, true)
	svc, store := newCartService(t, toddler)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", toddler.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(store.values) != 0 {
		t.Fatal("expected redis key removed")
	}

	current, err := svc.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !current.IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
}

func TestSessionIDRequired(t *testing.T) {
	svc, _ := newCartService(t)

	_, err := svc.Get(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
