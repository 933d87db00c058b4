package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db"
	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/metrics"
)

// createRetries bounds order-number collision retries. Collisions require two
// orders in the same millisecond with the same random suffix.
const createRetries = 3

// orderNumberConstraint names the unique index a collision trips.
const orderNumberConstraint = "orders_order_number_key"

// slipStore is the slice of Storage the service needs.
type slipStore interface {
	StoreSlip(ctx context.Context, orderID, ext, contentType string, data []byte) (string, error)
}

// Notifier delivers the two outbound messages of the order flow. OperatorAlert
// is best-effort and must swallow its own failures; DeliveryEmail failures
// propagate because completion depends on them.
type Notifier interface {
	OperatorAlert(ctx context.Context, order *models.Order)
	DeliveryEmail(ctx context.Context, order *models.Order) error
}

// changePublisher fans out "order changed, re-fetch" hints.
type changePublisher interface {
	PublishOrderChange(ctx context.Context, orderID string) error
}

// Service owns the order lifecycle: creation at checkout, slip submission,
// admin verification, and PDF delivery.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, filters Filters) ([]models.Order, error)
	Stats(ctx context.Context) (*Stats, error)
	SubmitSlip(ctx context.Context, id uuid.UUID, upload SlipUpload) (*models.Order, error)
	Verify(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error)
	Reject(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Deliver(ctx context.Context, id uuid.UUID) (*models.Order, error)
	VerifyAndSend(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error)
	Resend(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo    Repository
	slips   slipStore
	notify  Notifier
	events  changePublisher
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	numbers *NumberGenerator
}

// NewService builds the order service. events and metrics may be nil in demo
// deployments; repo, slips, notify and logg are required.
func NewService(
	repo Repository,
	slips slipStore,
	notify Notifier,
	events changePublisher,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if slips == nil {
		return nil, fmt.Errorf("slip store required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		slips:   slips,
		notify:  notify,
		events:  events,
		metrics: orderMetrics,
		logg:    logg,
		numbers: NewNumberGenerator(),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
	}

	var created *models.Order
	var err error
	for attempt := 0; attempt < createRetries; attempt++ {
		order := &models.Order{
			OrderNumber:   s.numbers.Next(),
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerEmail: strings.TrimSpace(input.CustomerEmail),
			CustomerPhone: strings.TrimSpace(input.CustomerPhone),
			Items:         input.Items,
			TotalAmount:   input.Items.Total(),
			Status:        enums.OrderStatusPending,
		}
		created, err = s.repo.Create(ctx, order)
		if err == nil {
			break
		}
		if !db.IsUniqueViolation(err, orderNumberConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number collision persisted")
	}

	s.metrics.IncCreated()
	s.publishChange(ctx, created.ID)
	ctx = s.logg.WithOrderNumber(s.logg.WithOrderID(ctx, created.ID.String()), created.OrderNumber)
	s.logg.Info(ctx, "order created")
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.find(ctx, id)
}

func (s *service) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	if strings.TrimSpace(number) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.Order, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status filter")
	}
	results, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return results, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute order stats")
	}
	return stats, nil
}

// SubmitSlip uploads payment evidence, moves the order to paid, and pings the
// operator. A paid order may submit again; the newest slip wins. The order row
// is only touched after the upload succeeds, so a storage failure leaves
// nothing half-recorded.
func (s *service) SubmitSlip(ctx context.Context, id uuid.UUID, upload SlipUpload) (*models.Order, error) {
	if len(upload.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slip image required")
	}
	if strings.TrimSpace(upload.TransferDate) == "" || strings.TrimSpace(upload.TransferTime) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer date and time required")
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	from := []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPaid}
	if !statusIn(order.Status, from) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "slip not accepted in current order state")
	}

	slipURL, err := s.slips.StoreSlip(ctx, order.ID.String(), upload.Ext, upload.ContentType, upload.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store slip image")
	}

	updated, err := s.repo.RecordSlip(ctx, order.ID, from, SlipDetails{
		ImageURL:     slipURL,
		TransferDate: strings.TrimSpace(upload.TransferDate),
		TransferTime: strings.TrimSpace(upload.TransferTime),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record slip")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "slip not accepted in current order state")
	}

	order, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.IncSlipUploaded()
	s.publishChange(ctx, order.ID)

	// best-effort: the customer's submission never fails on a messaging outage
	s.notify.OperatorAlert(ctx, order)

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "payment slip recorded")
	return order, nil
}

// Verify moves a paid order to verified. An order still pending (no slip) may
// be verified only with an explanatory note, covering payments confirmed out
// of band.
func (s *service) Verify(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	// already verified: succeed without re-counting, so a verify-and-send
	// retry after a failed delivery goes straight to the email
	if order.Status == enums.OrderStatusVerified {
		return order, nil
	}

	from := []enums.OrderStatus{enums.OrderStatusPaid}
	if order.Status == enums.OrderStatusPending {
		if notes == nil || strings.TrimSpace(*notes) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "verifying an order without a slip requires a note")
		}
		from = []enums.OrderStatus{enums.OrderStatusPending}
	}

	order, err = s.transition(ctx, id, from, enums.OrderStatusVerified, notes)
	if err != nil {
		return nil, err
	}
	s.metrics.IncVerified()
	s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "payment verified")
	return order, nil
}

// Reject cancels an order whose payment could not be confirmed.
func (s *service) Reject(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
	from := []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPaid}
	order, err := s.transition(ctx, id, from, enums.OrderStatusCancelled, notes)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCancelled()
	s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "order rejected")
	return order, nil
}

// Cancel is the customer-facing cancellation. Same transition as Reject but
// never records notes.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	from := []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPaid}
	order, err := s.transition(ctx, id, from, enums.OrderStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCancelled()
	s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "order cancelled")
	return order, nil
}

// Deliver emails the purchased PDFs and completes the order. The email goes
// out before the status flips: a delivery failure leaves the order verified
// with pdfs_sent still false, so the operator can retry.
func (s *service) Deliver(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery requires a verified order")
	}

	if err := s.notify.DeliveryEmail(ctx, order); err != nil {
		s.metrics.IncNotificationFailure("email")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send delivery email")
	}

	updated, err := s.repo.MarkDelivered(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order delivered")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed during delivery")
	}

	order, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCompleted()
	s.publishChange(ctx, order.ID)
	s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "pdfs delivered, order completed")
	return order, nil
}

// VerifyAndSend verifies the payment and immediately attempts delivery. When
// the email fails the order stays verified and the error surfaces; the
// verification itself is never rolled back.
func (s *service) VerifyAndSend(ctx context.Context, id uuid.UUID, notes *string) (*models.Order, error) {
	if _, err := s.Verify(ctx, id, notes); err != nil {
		return nil, err
	}
	return s.Deliver(ctx, id)
}

// Resend re-sends the delivery email for a completed order. Idempotent: the
// order is already completed and stays that way.
func (s *service) Resend(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "resend requires a completed order")
	}

	if err := s.notify.DeliveryEmail(ctx, order); err != nil {
		s.metrics.IncNotificationFailure("email")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resend delivery email")
	}

	s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "delivery email re-sent")
	return order, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, notes *string) (*models.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !statusIn(order.Status, from) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("transition to %s not allowed from %s", to, order.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, to, notes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
	}

	order, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, order.ID)
	return order, nil
}

func (s *service) publishChange(ctx context.Context, id uuid.UUID) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderChange(ctx, id.String()); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, id.String()), "publishing order change failed")
	}
}
