package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// LinkDTO is the transport shape for a raw team link record.
type LinkDTO struct {
	ID        uuid.UUID        `json:"id"`
	AdminID   uuid.UUID        `json:"admin_id"`
	ProfileID uuid.UUID        `json:"profile_id"`
	Status    enums.RoleStatus `json:"status"`
	Balance   int64            `json:"balance"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CourierMember mixes a courier link with profile and contact metadata
// for team admins.
type CourierMember struct {
	LinkID        uuid.UUID        `json:"link_id"`
	AdminID       uuid.UUID        `json:"admin_id"`
	CourierID     uuid.UUID        `json:"courier_id"`
	UserID        uuid.UUID        `json:"user_id"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Email         string           `json:"email"`
	Phone         *string          `json:"phone,omitempty"`
	Status        enums.RoleStatus `json:"status"`
	Balance       int64            `json:"balance"`
	Online        bool             `json:"online"`
	AvailableCash int64            `json:"available_cash"`
	CreatedAt     time.Time        `json:"created_at"`
}

// AllyMember mixes an ally link with profile metadata for team admins.
type AllyMember struct {
	LinkID    uuid.UUID        `json:"link_id"`
	AdminID   uuid.UUID        `json:"admin_id"`
	AllyID    uuid.UUID        `json:"ally_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Status    enums.RoleStatus `json:"status"`
	Balance   int64            `json:"balance"`
	CreatedAt time.Time        `json:"created_at"`
}

// CourierLinkToDTO converts a courier link model to the external DTO.
func CourierLinkToDTO(link *models.AdminCourier) *LinkDTO {
	if link == nil {
		return nil
	}
	return &LinkDTO{
		ID:        link.ID,
		AdminID:   link.AdminID,
		ProfileID: link.CourierID,
		Status:    link.Status,
		Balance:   link.Balance,
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}
}

// AllyLinkToDTO converts an ally link model to the external DTO.
func AllyLinkToDTO(link *models.AdminAlly) *LinkDTO {
	if link == nil {
		return nil
	}
	return &LinkDTO{
		ID:        link.ID,
		AdminID:   link.AdminID,
		ProfileID: link.AllyID,
		Status:    link.Status,
		Balance:   link.Balance,
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}
}
