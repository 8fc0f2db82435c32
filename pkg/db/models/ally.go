package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Ally represents a merchant that publishes delivery orders.
type Ally struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name      string           `gorm:"column:name;type:text;not null"`
	Phone     string           `gorm:"column:phone;type:text;not null"`
	Status    enums.RoleStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	DeletedAt gorm.DeletedAt   `gorm:"column:deleted_at;index"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// AllyLocation is a saved pickup point. At most one per ally carries
// the default flag; it resolves order pickups that omit coordinates.
type AllyLocation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AllyID    uuid.UUID `gorm:"column:ally_id;type:uuid;not null;index"`
	Label     string    `gorm:"column:label;type:text;not null"`
	Lat       float64   `gorm:"column:lat;not null"`
	Lng       float64   `gorm:"column:lng;not null"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// AllyCourierBlock excludes a courier from an ally's offer queues.
type AllyCourierBlock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AllyID    uuid.UUID `gorm:"column:ally_id;type:uuid;not null;uniqueIndex:idx_ally_courier_block"`
	CourierID uuid.UUID `gorm:"column:courier_id;type:uuid;not null;uniqueIndex:idx_ally_courier_block"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
