package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Repository persists an order's offer queue. The queue is append-once:
// CreateQueue writes all rows up front with positions 0..n-1 and every
// later mutation is a guarded status flip.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateQueue(ctx context.Context, orderID uuid.UUID, courierIDs []uuid.UUID) ([]models.Offer, error)
	NextPending(ctx context.Context, orderID uuid.UUID) (*models.Offer, error)
	CurrentOffered(ctx context.Context, orderID uuid.UUID) (*models.Offer, error)
	FindByOrderAndCourier(ctx context.Context, orderID, courierID uuid.UUID) (*models.Offer, error)
	// MarkOffered flips PENDING to OFFERED. False means the row was no
	// longer PENDING, so someone else already advanced the queue.
	MarkOffered(ctx context.Context, offerID uuid.UUID, at time.Time) (bool, error)
	// MarkResponse flips OFFERED to the given response status. False
	// means the offer had already been resolved.
	MarkResponse(ctx context.Context, offerID uuid.UUID, status enums.OfferStatus, at time.Time) (bool, error)
	// ResetQueue returns every REJECTED and EXPIRED row to PENDING so an
	// exhausted queue can run again within the same cycle.
	ResetQueue(ctx context.Context, orderID uuid.UUID) (int64, error)
	DeleteQueue(ctx context.Context, orderID uuid.UUID) error
	FindOfferedBefore(ctx context.Context, cutoff time.Time) ([]models.Offer, error)
	ListQueue(ctx context.Context, orderID uuid.UUID) ([]models.Offer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a GORM-backed offer queue repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateQueue(ctx context.Context, orderID uuid.UUID, courierIDs []uuid.UUID) ([]models.Offer, error) {
	if len(courierIDs) == 0 {
		return nil, fmt.Errorf("dispatch: cannot create an empty queue")
	}

	offers := make([]models.Offer, 0, len(courierIDs))
	for i, courierID := range courierIDs {
		offers = append(offers, models.Offer{
			OrderID:   orderID,
			CourierID: courierID,
			Position:  i,
			Status:    enums.OfferStatusPending,
		})
	}
	if err := r.db.WithContext(ctx).Create(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) NextPending(ctx context.Context, orderID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.OfferStatusPending).
		Order("position ASC").
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) CurrentOffered(ctx context.Context, orderID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.OfferStatusOffered).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) FindByOrderAndCourier(ctx context.Context, orderID, courierID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND courier_id = ?", orderID, courierID).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) MarkOffered(ctx context.Context, offerID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusPending).
		Updates(map[string]any{
			"status":     enums.OfferStatusOffered,
			"offered_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkResponse(ctx context.Context, offerID uuid.UUID, status enums.OfferStatus, at time.Time) (bool, error) {
	if !status.IsResponse() {
		return false, fmt.Errorf("dispatch: %q is not an offer response", status)
	}
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusOffered).
		Updates(map[string]any{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ResetQueue(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("order_id = ? AND status IN ?", orderID, []enums.OfferStatus{
			enums.OfferStatusRejected,
			enums.OfferStatusExpired,
		}).
		Updates(map[string]any{
			"status":       enums.OfferStatusPending,
			"offered_at":   nil,
			"responded_at": nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) DeleteQueue(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.Offer{}).Error
}

func (r *repository) FindOfferedBefore(ctx context.Context, cutoff time.Time) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("status = ? AND offered_at < ?", enums.OfferStatusOffered, cutoff).
		Order("offered_at ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) ListQueue(ctx context.Context, orderID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
