package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Offer is one row of an order's dispatch queue. Position fixes the
// rank-time ordering; at most one row per order is OFFERED at a time.
type Offer struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID         `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_offer_order_courier;index"`
	CourierID   uuid.UUID         `gorm:"column:courier_id;type:uuid;not null;uniqueIndex:idx_offer_order_courier"`
	Position    int               `gorm:"column:position;not null"`
	Status      enums.OfferStatus `gorm:"column:status;type:text;not null;default:'PENDING';index"`
	OfferedAt   *time.Time        `gorm:"column:offered_at"`
	RespondedAt *time.Time        `gorm:"column:responded_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
