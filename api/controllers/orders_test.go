package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ordersvc "github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// pngBytes is a minimal payload that sniffs as image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 512)...)

func multipartSlipRequest(t *testing.T, target string, file []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if file != nil {
		part, err := writer.CreateFormFile("slip", "slip.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serveSlip(svc ordersvc.Service, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/orders/{orderId}/slip", SubmitSlip(svc, config.SlipConfig{MaxUploadMB: 1}, nil))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSubmitSlipForwardsUpload(t *testing.T) {
	orderID := uuid.New()
	var gotUpload ordersvc.SlipUpload
	svc := &stubOrderService{
		submitSlipFn: func(_ context.Context, id uuid.UUID, upload ordersvc.SlipUpload) (*models.Order, error) {
			if id != orderID {
				t.Errorf("unexpected order id %s", id)
			}
			gotUpload = upload
			return &models.Order{ID: id, Status: enums.OrderStatusPaid}, nil
		},
	}

	req := multipartSlipRequest(t, "/orders/"+orderID.String()+"/slip", pngBytes, map[string]string{
		"transfer_date": "2025-08-12",
		"transfer_time": "14:30",
	})
	resp := serveSlip(svc, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotUpload.ContentType != "image/png" || gotUpload.Ext != "png" {
		t.Errorf("sniffed type = %q ext = %q", gotUpload.ContentType, gotUpload.Ext)
	}
	if gotUpload.TransferDate != "2025-08-12" || gotUpload.TransferTime != "14:30" {
		t.Errorf("transfer fields not forwarded: %+v", gotUpload)
	}
	if !bytes.Equal(gotUpload.Data, pngBytes) {
		t.Error("file bytes not forwarded intact")
	}
}

func TestSubmitSlipRejectsNonImage(t *testing.T) {
	svc := &stubOrderService{
		submitSlipFn: func(context.Context, uuid.UUID, ordersvc.SlipUpload) (*models.Order, error) {
			t.Fatal("service must not be called for a non-image upload")
			return nil, nil
		},
	}

	req := multipartSlipRequest(t, "/orders/"+uuid.NewString()+"/slip", []byte("%PDF-1.4 not an image"), nil)
	resp := serveSlip(svc, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSubmitSlipRejectsMissingFile(t *testing.T) {
	req := multipartSlipRequest(t, "/orders/"+uuid.NewString()+"/slip", nil, map[string]string{"transfer_date": "2025-08-12"})
	resp := serveSlip(&stubOrderService{}, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmitSlipRejectsOversizedFile(t *testing.T) {
	big := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 2<<20)...)
	req := multipartSlipRequest(t, "/orders/"+uuid.NewString()+"/slip", big, nil)
	resp := serveSlip(&stubOrderService{}, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDetailNotFoundPassthrough(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(_ context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, OrderNumber: "ORD-1-AAAA", Status: enums.OrderStatusPending}, nil
		},
	}

	r := chi.NewRouter()
	r.Get("/orders/{orderId}", OrderDetail(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
