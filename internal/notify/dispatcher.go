package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/multierr"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/mailer"
	"github.com/richrisemansion/ebook-pop/pkg/metrics"
	"github.com/richrisemansion/ebook-pop/pkg/telegram"
)

// telegramClient is the slice of the bot client the dispatcher needs.
type telegramClient interface {
	SendMessage(ctx context.Context, text string, keyboard *telegram.InlineKeyboard) error
	SendPhoto(ctx context.Context, photoURL, caption string, keyboard *telegram.InlineKeyboard) error
}

// mailClient sends the delivery email.
type mailClient interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// linkStore signs bucket objects for outbound messages.
type linkStore interface {
	SlipViewURL(slipURL string) (string, error)
	PDFDownloadURL(pdfURL string) (string, error)
}

// Dispatcher sends the two outbound messages of the order flow: the operator
// alert on slip submission and the PDF delivery email.
type Dispatcher struct {
	tg      telegramClient
	mail    mailClient
	links   linkStore
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

// NewDispatcher builds the dispatcher. tg may be nil when no bot is
// configured; mail and links are required.
func NewDispatcher(tg telegramClient, mail mailClient, links linkStore, orderMetrics *metrics.OrderMetrics, logg *logger.Logger) (*Dispatcher, error) {
	if mail == nil {
		return nil, fmt.Errorf("mail client required")
	}
	if links == nil {
		return nil, fmt.Errorf("link store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{tg: tg, mail: mail, links: links, metrics: orderMetrics, logg: logg}, nil
}

// OperatorAlert pings the operator chat about a freshly submitted slip. It
// tries a photo message with the signed slip image first and falls back to
// plain text; failures are logged and counted, never propagated, because the
// customer's submission already succeeded.
func (d *Dispatcher) OperatorAlert(ctx context.Context, order *models.Order) {
	if d.tg == nil {
		return
	}
	ctx = d.logg.WithOrderNumber(ctx, order.OrderNumber)

	caption := operatorCaption(order)
	keyboard := &telegram.InlineKeyboard{
		InlineKeyboard: [][]telegram.InlineButton{{
			{Text: "✅ อนุมัติ", CallbackData: "approve:" + order.ID.String()},
			{Text: "❌ ปฏิเสธ", CallbackData: "reject:" + order.ID.String()},
		}},
	}

	var errs error
	if order.SlipImageURL != nil {
		slipURL, err := d.links.SlipViewURL(*order.SlipImageURL)
		if err == nil {
			err = d.tg.SendPhoto(ctx, slipURL, caption, keyboard)
			if err == nil {
				return
			}
			// keep the slip reachable from the text fallback
			keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, []telegram.InlineButton{
				{Text: "🔍 ดูรูปสลิป", URL: slipURL},
			})
		}
		errs = multierr.Append(errs, err)
	}

	if err := d.tg.SendMessage(ctx, caption, keyboard); err != nil {
		errs = multierr.Append(errs, err)
		d.metrics.IncNotificationFailure("telegram")
		d.logg.Error(ctx, "operator alert failed", errs)
	}
}

// DeliveryEmail sends the purchased PDFs as signed download links. Errors
// propagate: the order must not complete without a delivered email.
func (d *Dispatcher) DeliveryEmail(ctx context.Context, order *models.Order) error {
	links := make([]deliveryLink, 0, len(order.Items))
	for _, item := range order.Items {
		if item.PDFURL == "" {
			return fmt.Errorf("item %q has no pdf", item.Title)
		}
		url, err := d.links.PDFDownloadURL(item.PDFURL)
		if err != nil {
			return fmt.Errorf("signing pdf for %q: %w", item.Title, err)
		}
		links = append(links, deliveryLink{Title: item.Title, URL: url})
	}

	msg := mailer.Message{
		To:      []string{order.CustomerEmail},
		Subject: fmt.Sprintf("หนังสือของคุณพร้อมดาวน์โหลดแล้ว - %s", order.OrderNumber),
		HTML:    deliveryHTML(order, links),
	}
	if _, err := d.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending delivery email: %w", err)
	}

	d.logg.Info(d.logg.WithOrderNumber(ctx, order.OrderNumber), "delivery email sent")
	return nil
}

type deliveryLink struct {
	Title string
	URL   string
}

func operatorCaption(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 <b>แจ้งชำระเงินใหม่</b>\n\n")
	fmt.Fprintf(&b, "📦 คำสั่งซื้อ: <code>%s</code>\n", html.EscapeString(order.OrderNumber))
	fmt.Fprintf(&b, "👤 ลูกค้า: %s\n", html.EscapeString(order.CustomerName))
	fmt.Fprintf(&b, "📧 อีเมล: %s\n", html.EscapeString(order.CustomerEmail))
	if order.CustomerPhone != "" {
		fmt.Fprintf(&b, "📱 โทร: %s\n", html.EscapeString(order.CustomerPhone))
	}
	b.WriteString("\n🛒 รายการ:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s x%d = %d บาท\n", html.EscapeString(item.Title), item.Quantity, item.Subtotal())
	}
	fmt.Fprintf(&b, "\n💵 ยอดรวม: <b>%d บาท</b>\n", order.TotalAmount)
	if order.TransferDate != nil && order.TransferTime != nil {
		fmt.Fprintf(&b, "🕐 โอนเมื่อ: %s %s\n", html.EscapeString(*order.TransferDate), html.EscapeString(*order.TransferTime))
	}
	return b.String()
}

func deliveryHTML(order *models.Order, links []deliveryLink) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, "<h2>ขอบคุณสำหรับการสั่งซื้อ 📚</h2>")
	fmt.Fprintf(&b, "<p>สวัสดีคุณ %s</p>", html.EscapeString(order.CustomerName))
	fmt.Fprintf(&b, "<p>คำสั่งซื้อ <strong>%s</strong> ได้รับการยืนยันแล้ว ดาวน์โหลดหนังสือของคุณได้จากลิงก์ด้านล่าง</p>", html.EscapeString(order.OrderNumber))
	b.WriteString("<ul>")
	for _, link := range links {
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, link.URL, html.EscapeString(link.Title))
	}
	b.WriteString("</ul>")
	b.WriteString("<p>ลิงก์ดาวน์โหลดมีอายุจำกัด หากหมดอายุสามารถติดต่อเราเพื่อขอลิงก์ใหม่ได้</p>")
	b.WriteString("</div>")
	return b.String()
}
