package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// memoryRepository backs demo deployments that run without Postgres. It holds
// orders in a map and mirrors the guarded-update semantics of the SQL repo.
type memoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*models.Order
}

// NewMemoryRepository builds an in-memory repository. When seed is true it is
// pre-populated with a small set of demo orders so the admin console has
// something to show.
func NewMemoryRepository(seed bool) Repository {
	repo := &memoryRepository{orders: map[uuid.UUID]*models.Order{}}
	if seed {
		for _, order := range demoOrders() {
			repo.orders[order.ID] = order
		}
	}
	return repo
}

func (r *memoryRepository) WithTx(tx *gorm.DB) Repository {
	return r
}

func (r *memoryRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.OrderNumber == order.OrderNumber {
			// classified the same way as the Postgres unique index
			return nil, fmt.Errorf("duplicate key value violates unique constraint %q", "orders_order_number_key")
		}
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}

	stored := cloneOrder(order)
	r.orders[stored.ID] = stored
	return cloneOrder(stored), nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneOrder(order), nil
}

func (r *memoryRepository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.OrderNumber == number {
			return cloneOrder(order), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRepository) List(ctx context.Context, filters Filters) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		results = append(results, *cloneOrder(order))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if filters.Limit > 0 && len(results) > filters.Limit {
		results = results[:filters.Limit]
	}
	return results, nil
}

func (r *memoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, notes *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || !statusIn(order.Status, from) {
		return false, nil
	}
	order.Status = to
	if notes != nil {
		value := *notes
		order.AdminNotes = &value
	}
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memoryRepository) RecordSlip(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, slip SlipDetails) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || !statusIn(order.Status, from) {
		return false, nil
	}
	imageURL, transferDate, transferTime := slip.ImageURL, slip.TransferDate, slip.TransferTime
	order.Status = enums.OrderStatusPaid
	order.SlipImageURL = &imageURL
	order.TransferDate = &transferDate
	order.TransferTime = &transferTime
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memoryRepository) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.Status != enums.OrderStatusVerified {
		return false, nil
	}
	order.Status = enums.OrderStatusCompleted
	order.PDFsSent = true
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memoryRepository) Stats(ctx context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &Stats{}
	for _, order := range r.orders {
		switch order.Status {
		case enums.OrderStatusPending, enums.OrderStatusPaid:
			stats.PendingVerification++
		case enums.OrderStatusVerified:
			stats.Verified++
			stats.Revenue += int64(order.TotalAmount)
		case enums.OrderStatusCompleted:
			stats.Completed++
			stats.Revenue += int64(order.TotalAmount)
		}
	}
	return stats, nil
}

func statusIn(status enums.OrderStatus, set []enums.OrderStatus) bool {
	for _, candidate := range set {
		if status == candidate {
			return true
		}
	}
	return false
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = append(models.OrderItems{}, order.Items...)
	clone.SlipImageURL = cloneString(order.SlipImageURL)
	clone.TransferDate = cloneString(order.TransferDate)
	clone.TransferTime = cloneString(order.TransferTime)
	clone.AdminNotes = cloneString(order.AdminNotes)
	return &clone
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func demoOrders() []*models.Order {
	base := time.Now().UTC().Add(-48 * time.Hour)
	slipURL := "https://storage.googleapis.com/order-slips/demo-slip.jpg"
	transferDate := "2025-08-10"
	transferTime := "14:32"

	return []*models.Order{
		{
			ID:            uuid.MustParse("11111111-1111-4111-8111-111111111111"),
			OrderNumber:   "ORD-MDEMO001-AAAA",
			CustomerName:  "สมหญิง ใจดี",
			CustomerEmail: "somying@example.com",
			CustomerPhone: "0891234567",
			Items: models.OrderItems{
				{ID: "demo-book-1", Title: "เข้าใจลูกวัยเตาะแตะ", Price: 299, Quantity: 1, PDFURL: "books/toddler-guide.pdf"},
			},
			TotalAmount: 299,
			Status:      enums.OrderStatusPending,
			CreatedAt:   base.Add(30 * time.Hour),
			UpdatedAt:   base.Add(30 * time.Hour),
		},
		{
			ID:            uuid.MustParse("22222222-2222-4222-8222-222222222222"),
			OrderNumber:   "ORD-MDEMO002-BBBB",
			CustomerName:  "วีระ พัฒนา",
			CustomerEmail: "weera@example.com",
			CustomerPhone: "0812345678",
			Items: models.OrderItems{
				{ID: "demo-book-2", Title: "จิตวิทยาเด็กประถม", Price: 379, Quantity: 2, PDFURL: "books/elementary-minds.pdf"},
			},
			TotalAmount:  758,
			Status:       enums.OrderStatusPaid,
			SlipImageURL: &slipURL,
			TransferDate: &transferDate,
			TransferTime: &transferTime,
			CreatedAt:    base.Add(10 * time.Hour),
			UpdatedAt:    base.Add(12 * time.Hour),
		},
		{
			ID:            uuid.MustParse("33333333-3333-4333-8333-333333333333"),
			OrderNumber:   "ORD-MDEMO003-CCCC",
			CustomerName:  "อรทัย สุขสม",
			CustomerEmail: "orathai@example.com",
			CustomerPhone: "0868889999",
			Items: models.OrderItems{
				{ID: "demo-book-3", Title: "เลี้ยงลูกวัยรุ่นอย่างเข้าใจ", Price: 429, Quantity: 1, PDFURL: "books/preteen-connect.pdf"},
			},
			TotalAmount: 429,
			Status:      enums.OrderStatusCompleted,
			PDFsSent:    true,
			CreatedAt:   base,
			UpdatedAt:   base.Add(6 * time.Hour),
		},
	}
}
