package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/internal/books"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

// Service mutates session carts. Every operation loads, changes, and saves
// the whole cart; Redis holds one JSON blob per session.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, bookID uuid.UUID, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, bookID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID, bookID string) (*Cart, error)
	SetCustomer(ctx context.Context, sessionID string, customer Customer) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	keeper  *Keeper
	catalog books.Service
	logg    *logger.Logger
}

// NewService builds the cart service. The catalog is consulted on every add
// so carts only ever hold live, active titles at their current price.
func NewService(keeper *Keeper, catalog books.Service, logg *logger.Logger) (Service, error) {
	if keeper == nil {
		return nil, fmt.Errorf("cart keeper required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{keeper: keeper, catalog: catalog, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *service) AddItem(ctx context.Context, sessionID string, bookID uuid.UUID, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	book, err := s.catalog.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not available")
	}

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := current.findItem(book.ID.String()); idx >= 0 {
		current.Items[idx].Quantity += quantity
	} else {
		pdfURL := ""
		if book.PDFURL != nil {
			pdfURL = *book.PDFURL
		}
		current.Items = append(current.Items, Item{
			BookID:   book.ID.String(),
			Title:    book.Title,
			Price:    book.Price,
			Quantity: quantity,
			PDFURL:   pdfURL,
		})
	}

	return s.save(ctx, sessionID, current)
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, bookID string, quantity int) (*Cart, error) {
	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := current.findItem(bookID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	// dropping the quantity to zero removes the line
	if quantity <= 0 {
		current.Items = append(current.Items[:idx], current.Items[idx+1:]...)
	} else {
		current.Items[idx].Quantity = quantity
	}

	return s.save(ctx, sessionID, current)
}

// RemoveItem drops the line; removing something not in the cart is a no-op so
// repeated clicks never error.
func (s *service) RemoveItem(ctx context.Context, sessionID, bookID string) (*Cart, error) {
	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := current.findItem(bookID)
	if idx < 0 {
		return current, nil
	}
	current.Items = append(current.Items[:idx], current.Items[idx+1:]...)
	return s.save(ctx, sessionID, current)
}

func (s *service) SetCustomer(ctx context.Context, sessionID string, customer Customer) (*Cart, error) {
	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	current.Customer = Customer{
		Name:  strings.TrimSpace(customer.Name),
		Email: strings.TrimSpace(customer.Email),
		Phone: strings.TrimSpace(customer.Phone),
	}
	return s.save(ctx, sessionID, current)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.keeper.Drop(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	loaded, err := s.keeper.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return loaded, nil
}

func (s *service) save(ctx context.Context, sessionID string, current *Cart) (*Cart, error) {
	if err := s.keeper.Save(ctx, sessionID, current); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return current, nil
}
