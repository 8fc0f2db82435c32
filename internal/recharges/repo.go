package recharges

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

// Repository manages persistence for recharge requests. MarkDecided is
// the linearization point: it flips PENDING to a terminal status in one
// conditional update and reports whether this caller won the race.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.RechargeRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RechargeRequest, error)
	MarkDecided(ctx context.Context, id uuid.UUID, decision Decision) (bool, error)
	ListByAdmin(ctx context.Context, params ListParams) ([]models.RechargeRequest, *pagination.Cursor, error)
}

// ListParams filters the admin-scoped recharge listing.
type ListParams struct {
	AdminID uuid.UUID
	Status  *enums.RechargeStatus
	Limit   int
	Cursor  *pagination.Cursor
}

// Decision carries the fields MarkDecided stamps onto the request row.
type Decision struct {
	Status       enums.RechargeStatus
	DecidedBy    uuid.UUID
	DecidedAt    time.Time
	RejectReason *string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a recharges repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.RechargeRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RechargeRequest, error) {
	var request models.RechargeRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) MarkDecided(ctx context.Context, id uuid.UUID, decision Decision) (bool, error) {
	updates := map[string]any{
		"status":     decision.Status,
		"decided_by": decision.DecidedBy,
		"decided_at": decision.DecidedAt,
	}
	if decision.RejectReason != nil {
		updates["reject_reason"] = *decision.RejectReason
	}
	res := r.db.WithContext(ctx).
		Model(&models.RechargeRequest{}).
		Where("id = ? AND status = ?", id, enums.RechargeStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByAdmin(ctx context.Context, params ListParams) ([]models.RechargeRequest, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	q := r.db.WithContext(ctx).
		Model(&models.RechargeRequest{}).
		Where("admin_id = ?", params.AdminID)
	if params.Status != nil {
		q = q.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var requests []models.RechargeRequest
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	if len(requests) > normalized {
		next := requests[normalized]
		requests = requests[:normalized]
		return requests, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return requests, nil, nil
}
