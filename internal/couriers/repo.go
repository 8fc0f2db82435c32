package couriers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Repository persists courier profiles and their location state.
type Repository interface {
	Create(ctx context.Context, courier *models.Courier) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error)
	SetOnline(ctx context.Context, id uuid.UUID, online bool) (bool, error)
	SetAvailableCash(ctx context.Context, id uuid.UUID, amount int64) (bool, error)
	UpdateResidence(ctx context.Context, id uuid.UUID, lat, lng float64) (bool, error)
	ReportLiveLocation(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) (bool, error)
	// ClearStaleLiveLocations wipes live coordinates whose last report
	// precedes the cutoff, forcing those riders back to the residence
	// fallback.
	ClearStaleLiveLocations(ctx context.Context, cutoff time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a GORM-backed couriers repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, courier *models.Courier) error {
	return r.db.WithContext(ctx).Create(courier).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	if err := r.db.WithContext(ctx).First(&courier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	if err := r.db.WithContext(ctx).First(&courier, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetOnline(ctx context.Context, id uuid.UUID, online bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", id).
		UpdateColumn("online", online)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetAvailableCash(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", id).
		UpdateColumn("available_cash", amount)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) UpdateResidence(ctx context.Context, id uuid.UUID, lat, lng float64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"residence_lat": lat,
			"residence_lng": lng,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReportLiveLocation(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"live_lat":         lat,
			"live_lng":         lng,
			"live_reported_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ClearStaleLiveLocations(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("live_reported_at IS NOT NULL AND live_reported_at < ?", cutoff).
		Updates(map[string]any{
			"live_lat":         nil,
			"live_lng":         nil,
			"live_reported_at": nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Courier{}, "id = ?", id).Error
}
