package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/internal/cart"
	"github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

type stubCarts struct {
	cart.Service
	current *cart.Cart
	cleared int
}

func (s *stubCarts) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return s.current, nil
}

func (s *stubCarts) Clear(ctx context.Context, sessionID string) error {
	s.cleared++
	s.current = &cart.Cart{}
	return nil
}

type stubOrders struct {
	orders.Service
	created   *models.Order
	lastInput orders.CreateOrderInput
}

func (s *stubOrders) Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	s.lastInput = input
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-STUB001-AAAA",
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Items:         input.Items,
		TotalAmount:   input.Items.Total(),
		Status:        enums.OrderStatusPending,
	}
	s.created = order
	return order, nil
}

func (s *stubOrders) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.created == nil || s.created.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.created, nil
}

func filledCart() *cart.Cart {
	return &cart.Cart{
		Items: []cart.Item{
			{BookID: "book-1", Title: "เข้าใจลูกวัยเตาะแตะ", Price: 299, Quantity: 1, PDFURL: "books/toddler.pdf"},
			{BookID: "book-2", Title: "จิตวิทยาเด็กประถม", Price: 379, Quantity: 2, PDFURL: "books/elementary.pdf"},
		},
	}
}

func newCheckout(t *testing.T, current *cart.Cart) (Service, *stubCarts, *stubOrders) {
	t.Helper()
	carts := &stubCarts{current: current}
	orderSvc := &stubOrders{}
	svc, err := NewService(carts, orderSvc, config.PromptPayConfig{MerchantID: "0812345678"},
		logger.New(logger.Options{ServiceName: "checkout-test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, carts, orderSvc
}

func validCustomer() CustomerInput {
	return CustomerInput{
		Name:  "สมชาย ทดสอบ",
		Email: "somchai@example.com",
		Phone: "089-111-2222",
	}
}

func TestSubmitMaterializesCart(t *testing.T) {
	svc, carts, orderSvc := newCheckout(t, filledCart())

	confirmation, err := svc.Submit(context.Background(), "sess-1", validCustomer())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if confirmation.Order.TotalAmount != 1057 {
		t.Fatalf("expected total 1057, got %d", confirmation.Order.TotalAmount)
	}
	if len(orderSvc.lastInput.Items) != 2 {
		t.Fatalf("expected 2 snapshot items, got %d", len(orderSvc.lastInput.Items))
	}
	if orderSvc.lastInput.CustomerPhone != "0891112222" {
		t.Fatalf("expected normalized phone, got %q", orderSvc.lastInput.CustomerPhone)
	}
	if carts.cleared != 1 {
		t.Fatalf("expected cart cleared once, got %d", carts.cleared)
	}

	payment := confirmation.Payment
	if payment.Amount != 1057 {
		t.Fatalf("expected payment amount 1057, got %d", payment.Amount)
	}
	if !strings.Contains(payment.Payload, "54071057.00") {
		t.Fatalf("expected amount field in payload, got %q", payment.Payload)
	}
	if !strings.Contains(payment.Payload, "5802TH") {
		t.Fatalf("expected country field in payload, got %q", payment.Payload)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	svc, _, _ := newCheckout(t, &cart.Cart{})

	_, err := svc.Submit(context.Background(), "sess-1", validCustomer())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitCustomerValidation(t *testing.T) {
	cases := []CustomerInput{
		{Email: "a@b.co", Phone: "0891112222"},
		{Name: "x", Email: "not-an-email", Phone: "0891112222"},
		{Name: "x", Email: "a@b.co", Phone: "12345"},
		{Name: "x", Email: "a@b.co", Phone: "089111222233"},
		{Name: "x", Email: "a@b.co", Phone: "08911122xx"},
	}
	for i, customer := range cases {
		svc, _, _ := newCheckout(t, filledCart())
		_, err := svc.Submit(context.Background(), "sess-1", customer)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestSubmitAcceptsInternationalPhone(t *testing.T) {
	svc, _, orderSvc := newCheckout(t, filledCart())

	customer := validCustomer()
	customer.Phone = "+66 89 111 2222"
	if _, err := svc.Submit(context.Background(), "sess-1", customer); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if orderSvc.lastInput.CustomerPhone != "891112222" {
		t.Fatalf("expected stripped country code, got %q", orderSvc.lastInput.CustomerPhone)
	}
}

func TestPaymentInfoOnlyWhileAwaitingPayment(t *testing.T) {
	svc, _, orderSvc := newCheckout(t, filledCart())
	ctx := context.Background()

	confirmation, err := svc.Submit(ctx, "sess-1", validCustomer())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	payment, err := svc.PaymentInfo(ctx, confirmation.Order.ID)
	if err != nil {
		t.Fatalf("payment info: %v", err)
	}
	if payment.Payload == "" {
		t.Fatal("expected payload")
	}

	orderSvc.created.Status = enums.OrderStatusCompleted
	_, err = svc.PaymentInfo(ctx, confirmation.Order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
