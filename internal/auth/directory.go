package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
)

// GormProfileDirectory resolves profile ids straight from the database.
type GormProfileDirectory struct {
	db *gorm.DB
}

// NewGormProfileDirectory binds the directory to the provided GORM connection.
func NewGormProfileDirectory(db *gorm.DB) *GormProfileDirectory {
	return &GormProfileDirectory{db: db}
}

func (g *GormProfileDirectory) CourierIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return g.pluckID(ctx, &models.Courier{}, "user_id", userID)
}

func (g *GormProfileDirectory) AllyIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return g.pluckID(ctx, &models.Ally{}, "user_id", userID)
}

func (g *GormProfileDirectory) AdminIDByOwner(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return g.pluckID(ctx, &models.Admin{}, "owner_user_id", userID)
}

func (g *GormProfileDirectory) pluckID(ctx context.Context, model any, column string, value uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := g.db.WithContext(ctx).
		Model(model).
		Where(column+" = ?", value).
		Pluck("id", &id).Error
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return id, nil
}
