package webhooks

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	ordersvc "github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
)

type stubOrderService struct {
	ordersvc.Service

	verifyAndSendFn func(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error)
	rejectFn        func(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error)
}

func (s *stubOrderService) VerifyAndSend(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
	return s.verifyAndSendFn(ctx, id, notes)
}

func (s *stubOrderService) Reject(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
	return s.rejectFn(ctx, id, notes)
}

type stubAnswerer struct {
	answers []string
	err     error
}

func (s *stubAnswerer) AnswerCallbackQuery(_ context.Context, _, text string) error {
	s.answers = append(s.answers, text)
	return s.err
}

func postUpdate(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/telegram", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func callbackBody(data string) string {
	return `{"update_id":7,"callback_query":{"id":"cb-1","from":{"id":42,"first_name":"Op"},"data":"` + data + `"}}`
}

func TestTelegramWebhookApprove(t *testing.T) {
	orderID := uuid.New()
	called := false
	svc := &stubOrderService{
		verifyAndSendFn: func(_ context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
			called = true
			if id != orderID {
				t.Errorf("unexpected order id %s", id)
			}
			if notes != nil {
				t.Errorf("expected nil notes, got %q", *notes)
			}
			return &models.Order{ID: id, OrderNumber: "ORD-1-AAAA", Status: enums.OrderStatusCompleted}, nil
		},
	}
	bot := &stubAnswerer{}

	resp := postUpdate(TelegramWebhook(svc, bot, nil), callbackBody("approve:"+orderID.String()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("VerifyAndSend not called")
	}
	if len(bot.answers) != 1 || !strings.Contains(bot.answers[0], "ORD-1-AAAA") {
		t.Errorf("unexpected callback answer: %v", bot.answers)
	}
}

func TestTelegramWebhookReject(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{
		rejectFn: func(_ context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
			if notes == nil || *notes == "" {
				t.Error("expected a rejection note")
			}
			return &models.Order{ID: id, OrderNumber: "ORD-2-BBBB", Status: enums.OrderStatusCancelled}, nil
		},
	}
	bot := &stubAnswerer{}

	resp := postUpdate(TelegramWebhook(svc, bot, nil), callbackBody("reject:"+orderID.String()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(bot.answers) != 1 || !strings.Contains(bot.answers[0], "ORD-2-BBBB") {
		t.Errorf("unexpected callback answer: %v", bot.answers)
	}
}

func TestTelegramWebhookStateConflictStaysOK(t *testing.T) {
	svc := &stubOrderService{
		verifyAndSendFn: func(context.Context, uuid.UUID, *string) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
		},
	}
	bot := &stubAnswerer{}

	resp := postUpdate(TelegramWebhook(svc, bot, nil), callbackBody("approve:"+uuid.NewString()))

	if resp.Code != http.StatusOK {
		t.Fatalf("telegram must get 200 even on conflict, got %d", resp.Code)
	}
	if len(bot.answers) != 1 {
		t.Fatalf("expected one callback answer, got %d", len(bot.answers))
	}
}

func TestTelegramWebhookIgnoresNonCallbacks(t *testing.T) {
	bot := &stubAnswerer{}
	resp := postUpdate(TelegramWebhook(&stubOrderService{}, bot, nil), `{"update_id":8}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(bot.answers) != 0 {
		t.Errorf("nothing to answer for a plain update, got %v", bot.answers)
	}
}

func TestTelegramWebhookUnknownAction(t *testing.T) {
	bot := &stubAnswerer{}
	resp := postUpdate(TelegramWebhook(&stubOrderService{}, bot, nil), callbackBody("snooze:"+uuid.NewString()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(bot.answers) != 1 {
		t.Fatalf("operator should still get an answer, got %d", len(bot.answers))
	}
}
