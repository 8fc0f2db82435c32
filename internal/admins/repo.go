package admins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Repository persists dispatch teams.
type Repository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) (*models.Admin, error)
	// SetStatus flips a team from one status to another. False means the
	// team was no longer in the expected status.
	SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error)
	ListByStatus(ctx context.Context, status enums.RoleStatus) ([]models.Admin, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a GORM-backed teams repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) FindByOwner(ctx context.Context, userID uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "owner_user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.RoleStatus) ([]models.Admin, error) {
	var admins []models.Admin
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at").
		Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}
