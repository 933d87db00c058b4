package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/richrisemansion/ebook-pop/api/responses"
	"github.com/richrisemansion/ebook-pop/api/validators"
	ordersvc "github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

// AdminOrders lists orders for the back-office, optionally narrowed by
// status and capped by limit.
func AdminOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		filters := ordersvc.Filters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			filters.Limit = limit
		}

		orders, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// AdminOrderStats returns the back-office funnel counters.
func AdminOrderStats(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

type adminNotesRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func decodeOptionalNotes(r *http.Request) (*string, error) {
	if r.ContentLength == 0 {
		return nil, nil
	}
	var payload adminNotesRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, err
	}
	return payload.Notes, nil
}

type orderAction func(r *http.Request, id uuid.UUID, notes *string) (*models.Order, error)

func adminOrderAction(svc ordersvc.Service, logg *logger.Logger, action orderAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		notes, err := decodeOptionalNotes(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := action(r, id, notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminVerifyOrder marks a paid order verified without sending the PDFs.
func AdminVerifyOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc, logg, func(r *http.Request, id uuid.UUID, notes *string) (*models.Order, error) {
		return svc.Verify(r.Context(), id, notes)
	})
}

// AdminVerifyAndSend verifies and immediately attempts PDF delivery.
func AdminVerifyAndSend(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc, logg, func(r *http.Request, id uuid.UUID, notes *string) (*models.Order, error) {
		return svc.VerifyAndSend(r.Context(), id, notes)
	})
}

// AdminRejectOrder cancels an order with an admin note.
func AdminRejectOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc, logg, func(r *http.Request, id uuid.UUID, notes *string) (*models.Order, error) {
		return svc.Reject(r.Context(), id, notes)
	})
}

// AdminCancelOrder cancels an unpaid order.
func AdminCancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc, logg, func(r *http.Request, id uuid.UUID, _ *string) (*models.Order, error) {
		return svc.Cancel(r.Context(), id)
	})
}

// AdminDeliverOrder retries PDF delivery for a verified order.
func AdminDeliverOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc, logg, func(r *http.Request, id uuid.UUID, _ *string) (*models.Order, error) {
		return svc.Deliver(r.Context(), id)
	})
}

// AdminResendOrder re-sends the delivery email for a completed order.
func AdminResendOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc, logg, func(r *http.Request, id uuid.UUID, _ *string) (*models.Order, error) {
		return svc.Resend(r.Context(), id)
	})
}
