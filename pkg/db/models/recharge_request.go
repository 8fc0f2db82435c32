package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// RechargeRequest asks an admin to move funds from the team master
// balance into a courier or ally wallet. Status transitions only
// PENDING -> APPROVED or PENDING -> REJECTED, decided exactly once.
type RechargeRequest struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID      uuid.UUID                `gorm:"column:admin_id;type:uuid;not null;index"`
	TargetType   enums.RechargeTargetType `gorm:"column:target_type;type:text;not null"`
	TargetID     uuid.UUID                `gorm:"column:target_id;type:uuid;not null"`
	Amount       int64                    `gorm:"column:amount;not null"`
	Status       enums.RechargeStatus     `gorm:"column:status;type:text;not null;default:'PENDING';index"`
	Method       string                   `gorm:"column:method;type:text"`
	Note         *string                  `gorm:"column:note;type:text"`
	ProofRef     *string                  `gorm:"column:proof_ref;type:text"`
	RequestedBy  uuid.UUID                `gorm:"column:requested_by;type:uuid;not null"`
	DecidedBy    *uuid.UUID               `gorm:"column:decided_by;type:uuid"`
	DecidedAt    *time.Time               `gorm:"column:decided_at"`
	RejectReason *string                  `gorm:"column:reject_reason;type:text"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
