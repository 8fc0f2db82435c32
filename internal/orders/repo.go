package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

// Repository defines persistence for delivery orders. The conditional
// writes (AssignCourier, TransitionStatus, ReleaseCourier) report
// whether the guard matched; callers treat a false result as losing the
// race, never as a reason to retry blindly.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) (bool, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, stamps map[string]any) (bool, error)
	ReleaseCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) (bool, error)
	FindPublishedCyclesBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	ListByAlly(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error)
	ListByCourier(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error)
}

// ListParams filters order listings. Scope carries the ally or courier
// id depending on the call.
type ListParams struct {
	Scope  uuid.UUID
	Status *enums.OrderStatus
	Limit  int
	Cursor *pagination.Cursor
}

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

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// AssignCourier is the single linearization point of dispatch: only one
// caller can ever match PUBLISHED with an unset courier.
func (r *repository) AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", orderID, enums.OrderStatusPublished).
		Updates(map[string]any{
			"courier_id":  courierID,
			"status":      enums.OrderStatusAccepted,
			"accepted_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, stamps map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range stamps {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ReleaseCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND courier_id = ?", orderID, enums.OrderStatusAccepted, courierID).
		Updates(map[string]any{
			"courier_id":       nil,
			"status":           enums.OrderStatusPublished,
			"accepted_at":      nil,
			"cycle_started_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindPublishedCyclesBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND cycle_started_at IS NOT NULL AND cycle_started_at < ?", enums.OrderStatusPublished, cutoff).
		Order("cycle_started_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListByAlly(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error) {
	return r.list(ctx, "ally_id = ?", params)
}

func (r *repository) ListByCourier(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error) {
	return r.list(ctx, "courier_id = ?", params)
}

func (r *repository) list(ctx context.Context, scopeClause string, params ListParams) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(scopeClause, params.Scope)
	if params.Status != nil {
		q = q.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}
