package memberships

import (
	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
)

type courierMemberRow struct {
	models.AdminCourier
	CourierUserID uuid.UUID `gorm:"column:courier_user_id"`
	Online        bool      `gorm:"column:online"`
	AvailableCash int64     `gorm:"column:available_cash"`
	FirstName     string    `gorm:"column:first_name"`
	LastName      string    `gorm:"column:last_name"`
	Email         string    `gorm:"column:email"`
	Phone         *string   `gorm:"column:phone"`
}

type allyMemberRow struct {
	models.AdminAlly
	AllyUserID uuid.UUID `gorm:"column:ally_user_id"`
	AllyName   string    `gorm:"column:ally_name"`
	AllyPhone  string    `gorm:"column:ally_phone"`
	Email      string    `gorm:"column:email"`
}

func courierMembersFromRows(rows []courierMemberRow) []CourierMember {
	out := make([]CourierMember, 0, len(rows))
	for _, row := range rows {
		out = append(out, CourierMember{
			LinkID:        row.ID,
			AdminID:       row.AdminID,
			CourierID:     row.CourierID,
			UserID:        row.CourierUserID,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			Email:         row.Email,
			Phone:         row.Phone,
			Status:        row.Status,
			Balance:       row.Balance,
			Online:        row.Online,
			AvailableCash: row.AvailableCash,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out
}

func allyMembersFromRows(rows []allyMemberRow) []AllyMember {
	out := make([]AllyMember, 0, len(rows))
	for _, row := range rows {
		out = append(out, AllyMember{
			LinkID:    row.ID,
			AdminID:   row.AdminID,
			AllyID:    row.AllyID,
			UserID:    row.AllyUserID,
			Name:      row.AllyName,
			Email:     row.Email,
			Phone:     row.AllyPhone,
			Status:    row.Status,
			Balance:   row.Balance,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
