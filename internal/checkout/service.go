package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/richrisemansion/ebook-pop/internal/cart"
	"github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/promptpay"
)

var (
	validate      = validator.New()
	phoneStripper = regexp.MustCompile(`[\s\-().]`)
)

// CustomerInput is the contact form submitted with checkout.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// Payment carries everything the storefront needs to render a PromptPay QR.
type Payment struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Amount      int    `json:"amount"`
	PromptPayID string `json:"promptpay_id"`
	Payload     string `json:"payload"`
}

// Confirmation is the result of a successful checkout.
type Confirmation struct {
	Order   *models.Order `json:"order"`
	Payment Payment       `json:"payment"`
}

// Service turns a session cart into a pending order with payment details.
type Service interface {
	Submit(ctx context.Context, sessionID string, customer CustomerInput) (*Confirmation, error)
	PaymentInfo(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

type service struct {
	carts  cart.Service
	orders orders.Service
	cfg    config.PromptPayConfig
	logg   *logger.Logger
}

// NewService builds the checkout service.
func NewService(carts cart.Service, orderSvc orders.Service, cfg config.PromptPayConfig, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return nil, fmt.Errorf("promptpay merchant id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{carts: carts, orders: orderSvc, cfg: cfg, logg: logg}, nil
}

// Submit validates the customer, materializes the cart into a pending order,
// clears the cart, and returns the PromptPay payment details. The cart clear
// is best-effort; a stale cart is harmless next to a lost order.
func (s *service) Submit(ctx context.Context, sessionID string, customer CustomerInput) (*Confirmation, error) {
	normalized, err := normalizeCustomer(customer)
	if err != nil {
		return nil, err
	}

	current, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make(models.OrderItems, 0, len(current.Items))
	for _, line := range current.Items {
		items = append(items, models.OrderItem{
			ID:       line.BookID,
			Title:    line.Title,
			Price:    line.Price,
			Quantity: line.Quantity,
			PDFURL:   line.PDFURL,
		})
	}

	order, err := s.orders.Create(ctx, orders.CreateOrderInput{
		CustomerName:  normalized.Name,
		CustomerEmail: normalized.Email,
		CustomerPhone: normalized.Phone,
		Items:         items,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithOrderNumber(ctx, order.OrderNumber), "clearing cart after checkout failed")
	}

	payment, err := s.buildPayment(order)
	if err != nil {
		return nil, err
	}
	return &Confirmation{Order: order, Payment: *payment}, nil
}

// PaymentInfo re-renders payment details for an order still awaiting
// verification, so a customer can reopen the QR page.
func (s *service) PaymentInfo(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case enums.OrderStatusPending, enums.OrderStatusPaid:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer awaiting payment")
	}
	return s.buildPayment(order)
}

func (s *service) buildPayment(order *models.Order) (*Payment, error) {
	payload, err := promptpay.Payload(s.cfg.MerchantID, decimal.NewFromInt(int64(order.TotalAmount)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build promptpay payload")
	}
	return &Payment{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.TotalAmount,
		PromptPayID: s.cfg.MerchantID,
		Payload:     payload,
	}, nil
}

func normalizeCustomer(customer CustomerInput) (*CustomerInput, error) {
	name := strings.TrimSpace(customer.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}

	email := strings.TrimSpace(customer.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}

	phone := phoneStripper.ReplaceAllString(strings.TrimSpace(customer.Phone), "")
	phone = strings.TrimPrefix(phone, "+66")
	if len(phone) < 9 || len(phone) > 10 || !isDigits(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be 9-10 digits")
	}

	return &CustomerInput{Name: name, Email: email, Phone: phone}, nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
