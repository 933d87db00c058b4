package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/richrisemansion/ebook-pop/pkg/db/models"
	"github.com/richrisemansion/ebook-pop/pkg/enums"
)

// Repository defines persistence operations for orders. Guarded mutations
// compare-and-set on the current status so concurrent admin actions cannot
// double-apply a transition; they report false when no row matched.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, filters Filters) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, notes *string) (bool, error)
	RecordSlip(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, slip SlipDetails) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}
