package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Order("created_at DESC")
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, notes *string) (bool, error) {
	updates := map[string]any{"status": to}
	if notes != nil {
		updates["admin_notes"] = *notes
	}
	return r.guardedUpdate(ctx, id, from, updates)
}

func (r *repository) RecordSlip(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, slip SlipDetails) (bool, error) {
	updates := map[string]any{
		"status":         enums.OrderStatusPaid,
		"slip_image_url": slip.ImageURL,
		"transfer_date":  slip.TransferDate,
		"transfer_time":  slip.TransferTime,
	}
	return r.guardedUpdate(ctx, id, from, updates)
}

func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	updates := map[string]any{
		"status":    enums.OrderStatusCompleted,
		"pdfs_sent": true,
	}
	return r.guardedUpdate(ctx, id, []enums.OrderStatus{enums.OrderStatusVerified}, updates)
}

func (r *repository) guardedUpdate(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		dest     *int64
		statuses []enums.OrderStatus
	}{
		{&stats.PendingVerification, []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPaid}},
		{&stats.Verified, []enums.OrderStatus{enums.OrderStatusVerified}},
		{&stats.Completed, []enums.OrderStatus{enums.OrderStatusCompleted}},
	}
	for _, c := range counts {
		err := r.db.WithContext(ctx).
			Model(&models.Order{}).
			Where("status IN ?", c.statuses).
			Count(c.dest).Error
		if err != nil {
			return nil, err
		}
	}

	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusVerified, enums.OrderStatusCompleted}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.Revenue).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
