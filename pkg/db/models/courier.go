package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Courier represents a delivery rider. Residence coordinates are captured
// at registration and act as the location fallback when no fresh live
// report exists. AvailableCash is the rider's declared cash float in
// minor units, used for cash-on-delivery eligibility and ranking ties.
type Courier struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FullName        string           `gorm:"column:full_name;type:text;not null"`
	Phone           string           `gorm:"column:phone;type:text;not null"`
	Status          enums.RoleStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Online          bool             `gorm:"column:online;not null;default:false"`
	AvailableCash   int64            `gorm:"column:available_cash;not null;default:0"`
	ResidenceLat    *float64         `gorm:"column:residence_lat"`
	ResidenceLng    *float64         `gorm:"column:residence_lng"`
	LiveLat         *float64         `gorm:"column:live_lat"`
	LiveLng         *float64         `gorm:"column:live_lng"`
	LiveReportedAt  *time.Time       `gorm:"column:live_reported_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"column:deleted_at;index"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
