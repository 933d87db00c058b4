package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/api/responses"
	ordersvc "github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/telegram"
)

type callbackAnswerer interface {
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

// TelegramWebhook handles callback queries from the operator chat's
// approve/reject buttons. Malformed or unrelated updates are acknowledged
// without action so Telegram stops re-delivering them; order state errors are
// reported back through the callback answer.
func TelegramWebhook(svc ordersvc.Service, bot callbackAnswerer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var update telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode update"))
			return
		}

		if update.CallbackQuery == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		answer := func(text string) {
			if bot == nil {
				return
			}
			if err := bot.AnswerCallbackQuery(ctx, update.CallbackQuery.ID, text); err != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "callback_id", update.CallbackQuery.ID), "answer callback failed")
			}
		}

		action, rawID, ok := strings.Cut(update.CallbackQuery.Data, ":")
		if !ok {
			answer("ไม่รู้จักคำสั่งนี้")
			responses.WriteSuccess(w, nil)
			return
		}

		orderID, err := uuid.Parse(rawID)
		if err != nil {
			answer("รหัสคำสั่งซื้อไม่ถูกต้อง")
			responses.WriteSuccess(w, nil)
			return
		}

		var order *models.Order
		switch action {
		case "approve":
			order, err = svc.VerifyAndSend(ctx, orderID, nil)
		case "reject":
			note := "ปฏิเสธผ่าน Telegram"
			order, err = svc.Reject(ctx, orderID, &note)
		default:
			answer("ไม่รู้จักคำสั่งนี้")
			responses.WriteSuccess(w, nil)
			return
		}

		if err != nil {
			if logg != nil {
				logg.Error(logg.WithOrderID(ctx, orderID.String()), "webhook order action failed", err)
			}
			answer(actionFailureText(err))
			responses.WriteSuccess(w, nil)
			return
		}

		answer(actionSuccessText(action, order))
		responses.WriteSuccess(w, nil)
	}
}

func actionSuccessText(action string, order *models.Order) string {
	if action == "approve" {
		return "✅ อนุมัติและส่งหนังสือแล้ว " + order.OrderNumber
	}
	return "❌ ปฏิเสธคำสั่งซื้อ " + order.OrderNumber
}

func actionFailureText(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeNotFound:
			return "ไม่พบคำสั่งซื้อ"
		case pkgerrors.CodeStateConflict:
			return "สถานะคำสั่งซื้อไม่ถูกต้อง"
		}
	}
	return "เกิดข้อผิดพลาด กรุณาลองใหม่"
}
