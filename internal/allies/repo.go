package allies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Repository persists ally profiles, their saved pickup locations, and
// the per-ally courier blocklist.
type Repository interface {
	Create(ctx context.Context, ally *models.Ally) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ally, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Ally, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error)

	CreateLocation(ctx context.Context, location *models.AllyLocation) error
	FindLocation(ctx context.Context, allyID, locationID uuid.UUID) (*models.AllyLocation, error)
	FindDefaultLocation(ctx context.Context, allyID uuid.UUID) (*models.AllyLocation, error)
	ListLocations(ctx context.Context, allyID uuid.UUID) ([]models.AllyLocation, error)
	// SetDefaultLocation clears the ally's current default and flags the
	// given location in one transaction.
	SetDefaultLocation(ctx context.Context, allyID, locationID uuid.UUID) (bool, error)
	DeleteLocation(ctx context.Context, allyID, locationID uuid.UUID) (bool, error)

	CreateBlock(ctx context.Context, allyID, courierID uuid.UUID) error
	DeleteBlock(ctx context.Context, allyID, courierID uuid.UUID) (bool, error)
	ListBlocks(ctx context.Context, allyID uuid.UUID) ([]models.AllyCourierBlock, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a GORM-backed allies repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ally *models.Ally) error {
	return r.db.WithContext(ctx).Create(ally).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ally, error) {
	var ally models.Ally
	if err := r.db.WithContext(ctx).First(&ally, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ally, nil
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Ally, error) {
	var ally models.Ally
	if err := r.db.WithContext(ctx).First(&ally, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &ally, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Ally{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateLocation(ctx context.Context, location *models.AllyLocation) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) FindLocation(ctx context.Context, allyID, locationID uuid.UUID) (*models.AllyLocation, error) {
	var location models.AllyLocation
	err := r.db.WithContext(ctx).
		Where("id = ? AND ally_id = ?", locationID, allyID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) FindDefaultLocation(ctx context.Context, allyID uuid.UUID) (*models.AllyLocation, error) {
	var location models.AllyLocation
	err := r.db.WithContext(ctx).
		Where("ally_id = ? AND is_default", allyID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) ListLocations(ctx context.Context, allyID uuid.UUID) ([]models.AllyLocation, error) {
	var locations []models.AllyLocation
	err := r.db.WithContext(ctx).
		Where("ally_id = ?", allyID).
		Order("created_at").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *repository) SetDefaultLocation(ctx context.Context, allyID, locationID uuid.UUID) (bool, error) {
	var flagged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AllyLocation{}).
			Where("ally_id = ? AND is_default", allyID).
			UpdateColumn("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.AllyLocation{}).
			Where("id = ? AND ally_id = ?", locationID, allyID).
			UpdateColumn("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		flagged = result.RowsAffected
		return nil
	})
	if err != nil {
		return false, err
	}
	return flagged > 0, nil
}

func (r *repository) DeleteLocation(ctx context.Context, allyID, locationID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND ally_id = ?", locationID, allyID).
		Delete(&models.AllyLocation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateBlock(ctx context.Context, allyID, courierID uuid.UUID) error {
	block := &models.AllyCourierBlock{AllyID: allyID, CourierID: courierID}
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *repository) DeleteBlock(ctx context.Context, allyID, courierID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("ally_id = ? AND courier_id = ?", allyID, courierID).
		Delete(&models.AllyCourierBlock{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListBlocks(ctx context.Context, allyID uuid.UUID) ([]models.AllyCourierBlock, error) {
	var blocks []models.AllyCourierBlock
	err := r.db.WithContext(ctx).
		Where("ally_id = ?", allyID).
		Order("created_at").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
