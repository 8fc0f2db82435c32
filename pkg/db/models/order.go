package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Order is a delivery request published by an ally. CourierID stays null
// until a courier wins the conditional assignment; the pair
// (status='PUBLISHED', courier_id IS NULL) is the only window in which
// assignment can succeed.
type Order struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AllyID             uuid.UUID          `gorm:"column:ally_id;type:uuid;not null;index"`
	AdminID            uuid.UUID          `gorm:"column:admin_id;type:uuid;not null;index"`
	CourierID          *uuid.UUID         `gorm:"column:courier_id;type:uuid;index"`
	Status             enums.OrderStatus  `gorm:"column:status;type:text;not null;default:'PENDING';index"`
	PickupLat          float64            `gorm:"column:pickup_lat;not null"`
	PickupLng          float64            `gorm:"column:pickup_lng;not null"`
	DropoffAddress     string             `gorm:"column:dropoff_address;type:text;not null"`
	DropoffLat         *float64           `gorm:"column:dropoff_lat"`
	DropoffLng         *float64           `gorm:"column:dropoff_lng"`
	RequiresCash       bool               `gorm:"column:requires_cash;not null;default:false"`
	CashRequiredAmount int64              `gorm:"column:cash_required_amount;not null;default:0"`
	Price              int64              `gorm:"column:price;not null;default:0"`
	DistanceKM         float64            `gorm:"column:distance_km;not null;default:0"`
	Notes              *string            `gorm:"column:notes;type:text"`
	CycleStartedAt     *time.Time         `gorm:"column:cycle_started_at"`
	PublishedAt        *time.Time         `gorm:"column:published_at"`
	AcceptedAt         *time.Time         `gorm:"column:accepted_at"`
	PickedUpAt         *time.Time         `gorm:"column:picked_up_at"`
	DeliveredAt        *time.Time         `gorm:"column:delivered_at"`
	CancelledAt        *time.Time         `gorm:"column:cancelled_at"`
	CancelledBy        *enums.CancelActor `gorm:"column:cancelled_by;type:text"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
