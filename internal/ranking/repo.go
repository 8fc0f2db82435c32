package ranking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// CourierRow is the raw candidate material pulled from the store: the
// courier joined with its team link.
type CourierRow struct {
	CourierID      uuid.UUID
	UserID         uuid.UUID
	LinkID         uuid.UUID
	Online         bool
	AvailableCash  int64
	ResidenceLat   *float64
	ResidenceLng   *float64
	LiveLat        *float64
	LiveLng        *float64
	LiveReportedAt *time.Time
}

// Repository loads ranking inputs. Filtering that the database can do
// cheaply (status, soft delete) happens here; geography and staleness
// stay in the service.
type Repository interface {
	ListTeamCouriers(ctx context.Context, adminID uuid.UUID) ([]CourierRow, error)
	ListBlockedCourierIDs(ctx context.Context, allyID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ranking repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListTeamCouriers(ctx context.Context, adminID uuid.UUID) ([]CourierRow, error) {
	var rows []CourierRow
	err := r.db.WithContext(ctx).
		Table("admin_couriers").
		Select(`couriers.id AS courier_id,
			couriers.user_id AS user_id,
			admin_couriers.id AS link_id,
			couriers.online AS online,
			couriers.available_cash AS available_cash,
			couriers.residence_lat, couriers.residence_lng,
			couriers.live_lat, couriers.live_lng, couriers.live_reported_at`).
		Joins("JOIN couriers ON couriers.id = admin_couriers.courier_id").
		Where("admin_couriers.admin_id = ?", adminID).
		Where("admin_couriers.status = ?", enums.RoleStatusApproved).
		Where("couriers.status = ?", enums.RoleStatusApproved).
		Where("couriers.deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBlockedCourierIDs(ctx context.Context, allyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.AllyCourierBlock{}).
		Where("ally_id = ?", allyID).
		Pluck("courier_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
