package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// AdminCourier links a courier to an admin team. The balance column is
// the courier's wallet within the team, in minor units, non-negative.
type AdminCourier struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID   uuid.UUID        `gorm:"column:admin_id;type:uuid;not null;uniqueIndex:idx_admin_courier"`
	CourierID uuid.UUID        `gorm:"column:courier_id;type:uuid;not null;uniqueIndex:idx_admin_courier"`
	Status    enums.RoleStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Balance   int64            `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// AdminAlly links an ally to an admin team with its own wallet.
type AdminAlly struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID   uuid.UUID        `gorm:"column:admin_id;type:uuid;not null;uniqueIndex:idx_admin_ally"`
	AllyID    uuid.UUID        `gorm:"column:ally_id;type:uuid;not null;uniqueIndex:idx_admin_ally"`
	Status    enums.RoleStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Balance   int64            `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
