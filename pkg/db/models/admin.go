package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Admin represents a dispatch team. The balance column is the team's
// master balance in minor units; it backs every recharge debit and is
// never allowed to go negative.
type Admin struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID        `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	TeamName    string           `gorm:"column:team_name;type:text;not null"`
	TeamCode    string           `gorm:"column:team_code;type:text;not null;uniqueIndex"`
	Status      enums.RoleStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Balance     int64            `gorm:"column:balance;not null;default:0"`
	IsPlatform  bool             `gorm:"column:is_platform;not null;default:false"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
