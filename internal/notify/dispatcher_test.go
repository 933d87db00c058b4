package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/mailer"
	"github.com/richrisemansion/ebook-pop/pkg/metrics"
	"github.com/richrisemansion/ebook-pop/pkg/telegram"
)

type stubTelegram struct {
	photos   []string
	captions []string
	messages []string
	keyboard *telegram.InlineKeyboard
	photoErr error
	msgErr   error
}

func (s *stubTelegram) SendMessage(_ context.Context, text string, keyboard *telegram.InlineKeyboard) error {
	if s.msgErr != nil {
		return s.msgErr
	}
	s.messages = append(s.messages, text)
	s.keyboard = keyboard
	return nil
}

func (s *stubTelegram) SendPhoto(_ context.Context, photoURL, caption string, keyboard *telegram.InlineKeyboard) error {
	if s.photoErr != nil {
		return s.photoErr
	}
	s.photos = append(s.photos, photoURL)
	s.captions = append(s.captions, caption)
	s.keyboard = keyboard
	return nil
}

type stubMail struct {
	sent    []mailer.Message
	sendErr error
}

func (s *stubMail) Send(_ context.Context, msg mailer.Message) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, msg)
	return "msg-1", nil
}

type stubLinks struct {
	slipErr error
	pdfErr  error
}

func (s *stubLinks) SlipViewURL(slipURL string) (string, error) {
	if s.slipErr != nil {
		return "", s.slipErr
	}
	return slipURL + "?signed", nil
}

func (s *stubLinks) PDFDownloadURL(pdfURL string) (string, error) {
	if s.pdfErr != nil {
		return "", s.pdfErr
	}
	return pdfURL + "?signed", nil
}

func testOrder() *models.Order {
	slip := "https://storage.googleapis.com/order-slips/abc-1.jpg"
	date, clock := "2025-08-12", "14:30"
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-TEST-AAAA",
		CustomerName:  "สมชาย ใจดี",
		CustomerEmail: "somchai@example.com",
		CustomerPhone: "0891112222",
		Items: models.OrderItems{
			{ID: uuid.New().String(), Title: "นิทานก่อนนอน", Price: 299, Quantity: 1, PDFURL: "https://storage.googleapis.com/book-assets/pdfs/a.pdf"},
			{ID: uuid.New().String(), Title: "เข้าใจลูกวัยอนุบาล", Price: 379, Quantity: 2, PDFURL: "https://storage.googleapis.com/book-assets/pdfs/b.pdf"},
		},
		TotalAmount:  1057,
		SlipImageURL: &slip,
		TransferDate: &date,
		TransferTime: &clock,
	}
}

func newDispatcher(t *testing.T, tg telegramClient, mail mailClient, links linkStore) (*Dispatcher, *metrics.OrderMetrics) {
	t.Helper()
	m := metrics.NewOrderMetrics(prometheus.NewRegistry())
	d, err := NewDispatcher(tg, mail, links, m, logger.New(logger.Options{ServiceName: "notify-test"}))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d, m
}

func TestOperatorAlertSendsPhotoWithSignedSlip(t *testing.T) {
	tg := &stubTelegram{}
	d, _ := newDispatcher(t, tg, &stubMail{}, &stubLinks{})
	order := testOrder()

	d.OperatorAlert(context.Background(), order)

	if len(tg.photos) != 1 {
		t.Fatalf("expected one photo, got %d (messages %d)", len(tg.photos), len(tg.messages))
	}
	if !strings.HasSuffix(tg.photos[0], "?signed") {
		t.Errorf("slip URL not signed: %q", tg.photos[0])
	}
	caption := tg.captions[0]
	for _, want := range []string{"ORD-TEST-AAAA", "สมชาย ใจดี", "เข้าใจลูกวัยอนุบาล x2 = 758 บาท", "1057 บาท", "2025-08-12 14:30"} {
		if !strings.Contains(caption, want) {
			t.Errorf("caption missing %q:\n%s", want, caption)
		}
	}

	if tg.keyboard == nil || len(tg.keyboard.InlineKeyboard) != 1 || len(tg.keyboard.InlineKeyboard[0]) != 2 {
		t.Fatalf("expected a single row of two buttons, got %+v", tg.keyboard)
	}
	row := tg.keyboard.InlineKeyboard[0]
	if row[0].CallbackData != "approve:"+order.ID.String() {
		t.Errorf("approve callback = %q", row[0].CallbackData)
	}
	if row[1].CallbackData != "reject:"+order.ID.String() {
		t.Errorf("reject callback = %q", row[1].CallbackData)
	}
}

func TestOperatorAlertFallsBackToText(t *testing.T) {
	tg := &stubTelegram{photoErr: errors.New("photo too large")}
	d, _ := newDispatcher(t, tg, &stubMail{}, &stubLinks{})

	d.OperatorAlert(context.Background(), testOrder())

	if len(tg.messages) != 1 {
		t.Fatalf("expected text fallback, got %d messages", len(tg.messages))
	}
	if tg.keyboard == nil || len(tg.keyboard.InlineKeyboard) != 2 {
		t.Fatalf("fallback keyboard must keep actions and add the slip link, got %+v", tg.keyboard)
	}
	slipRow := tg.keyboard.InlineKeyboard[1]
	if len(slipRow) != 1 || !strings.HasSuffix(slipRow[0].URL, "?signed") {
		t.Errorf("fallback must carry the signed slip URL button, got %+v", slipRow)
	}
}

func TestOperatorAlertSwallowsFailures(t *testing.T) {
	tg := &stubTelegram{photoErr: errors.New("down"), msgErr: errors.New("down")}
	d, _ := newDispatcher(t, tg, &stubMail{}, &stubLinks{})

	d.OperatorAlert(context.Background(), testOrder())
}

func TestOperatorAlertWithoutBot(t *testing.T) {
	d, _ := newDispatcher(t, nil, &stubMail{}, &stubLinks{})
	d.OperatorAlert(context.Background(), testOrder())
}

func TestDeliveryEmailLinksEveryItem(t *testing.T) {
	mail := &stubMail{}
	d, _ := newDispatcher(t, &stubTelegram{}, mail, &stubLinks{})

	if err := d.DeliveryEmail(context.Background(), testOrder()); err != nil {
		t.Fatalf("DeliveryEmail: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mail.sent))
	}
	msg := mail.sent[0]
	if msg.To[0] != "somchai@example.com" {
		t.Errorf("recipient = %q", msg.To[0])
	}
	if !strings.Contains(msg.Subject, "ORD-TEST-AAAA") {
		t.Errorf("subject missing order number: %q", msg.Subject)
	}
	for _, want := range []string{"pdfs/a.pdf?signed", "pdfs/b.pdf?signed", "นิทานก่อนนอน"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestDeliveryEmailPropagatesFailures(t *testing.T) {
	order := testOrder()

	d, _ := newDispatcher(t, &stubTelegram{}, &stubMail{sendErr: errors.New("quota")}, &stubLinks{})
	if err := d.DeliveryEmail(context.Background(), order); err == nil {
		t.Error("expected send failure to propagate")
	}

	d, _ = newDispatcher(t, &stubTelegram{}, &stubMail{}, &stubLinks{pdfErr: errors.New("signer")})
	if err := d.DeliveryEmail(context.Background(), order); err == nil {
		t.Error("expected signing failure to propagate")
	}

	order.Items[0].PDFURL = ""
	d, _ = newDispatcher(t, &stubTelegram{}, &stubMail{}, &stubLinks{})
	if err := d.DeliveryEmail(context.Background(), order); err == nil {
		t.Error("expected missing pdf to propagate")
	}
}
