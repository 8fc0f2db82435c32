package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// Repository exposes team link persistence: the admin_couriers and
// admin_allies rows that tie a courier or ally profile to a team and
// carry that relationship's wallet balance.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository scoped to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindAdmin retrieves a team by id.
func (r *Repository) FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindAdminByOwner retrieves the team owned by the given user.
func (r *Repository) FindAdminByOwner(ctx context.Context, userID uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "owner_user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindAdminByTeamCode retrieves a team by its join code.
func (r *Repository) FindAdminByTeamCode(ctx context.Context, code string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "team_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindCourierLink retrieves the courier's link to the given team.
func (r *Repository) FindCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error) {
	var link models.AdminCourier
	err := r.db.WithContext(ctx).
		Where("admin_id = ? AND courier_id = ?", adminID, courierID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindAllyLink retrieves the ally's link to the given team.
func (r *Repository) FindAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error) {
	var link models.AdminAlly
	err := r.db.WithContext(ctx).
		Where("admin_id = ? AND ally_id = ?", adminID, allyID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindCourierLinkByID retrieves a courier link by its primary key.
func (r *Repository) FindCourierLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminCourier, error) {
	var link models.AdminCourier
	if err := r.db.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindAllyLinkByID retrieves an ally link by its primary key.
func (r *Repository) FindAllyLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminAlly, error) {
	var link models.AdminAlly
	if err := r.db.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// CreateCourierLink persists a new pending courier link.
func (r *Repository) CreateCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error) {
	link := &models.AdminCourier{
		AdminID:   adminID,
		CourierID: courierID,
		Status:    enums.RoleStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// CreateAllyLink persists a new pending ally link.
func (r *Repository) CreateAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error) {
	link := &models.AdminAlly{
		AdminID: adminID,
		AllyID:  allyID,
		Status:  enums.RoleStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// SetCourierLinkStatus flips a courier link from one status to another.
// False means the link was no longer in the expected status.
func (r *Repository) SetCourierLinkStatus(ctx context.Context, linkID uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AdminCourier{}).
		Where("id = ? AND status = ?", linkID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetAllyLinkStatus flips an ally link from one status to another.
func (r *Repository) SetAllyLinkStatus(ctx context.Context, linkID uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AdminAlly{}).
		Where("id = ? AND status = ?", linkID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListTeamCouriers returns the team's courier links joined with profile
// and account metadata.
func (r *Repository) ListTeamCouriers(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]CourierMember, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AdminCourier{}).
		Select("admin_couriers.*, couriers.user_id AS courier_user_id, couriers.online, couriers.available_cash, users.first_name, users.last_name, users.email, users.phone").
		Joins("JOIN couriers ON couriers.id = admin_couriers.courier_id AND couriers.deleted_at IS NULL").
		Joins("JOIN users ON users.id = couriers.user_id").
		Where("admin_couriers.admin_id = ?", adminID)
	if status != nil {
		query = query.Where("admin_couriers.status = ?", *status)
	}

	var rows []courierMemberRow
	if err := query.Order("admin_couriers.created_at").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return courierMembersFromRows(rows), nil
}

// ListTeamAllies returns the team's ally links joined with profile
// metadata.
func (r *Repository) ListTeamAllies(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]AllyMember, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AdminAlly{}).
		Select("admin_allies.*, allies.user_id AS ally_user_id, allies.name AS ally_name, allies.phone AS ally_phone, users.email").
		Joins("JOIN allies ON allies.id = admin_allies.ally_id AND allies.deleted_at IS NULL").
		Joins("JOIN users ON users.id = allies.user_id").
		Where("admin_allies.admin_id = ?", adminID)
	if status != nil {
		query = query.Where("admin_allies.status = ?", *status)
	}

	var rows []allyMemberRow
	if err := query.Order("admin_allies.created_at").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return allyMembersFromRows(rows), nil
}

// ListCourierTeams returns the teams a courier is linked to.
func (r *Repository) ListCourierTeams(ctx context.Context, courierID uuid.UUID) ([]models.AdminCourier, error) {
	var links []models.AdminCourier
	err := r.db.WithContext(ctx).
		Where("courier_id = ?", courierID).
		Order("created_at").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ListAllyTeams returns the teams an ally is linked to.
func (r *Repository) ListAllyTeams(ctx context.Context, allyID uuid.UUID) ([]models.AdminAlly, error) {
	var links []models.AdminAlly
	err := r.db.WithContext(ctx).
		Where("ally_id = ?", allyID).
		Order("created_at").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// CountFundedCouriers counts the team's approved courier links whose
// balance sits at or above the floor.
func (r *Repository) CountFundedCouriers(ctx context.Context, adminID uuid.UUID, floor int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AdminCourier{}).
		Joins("JOIN couriers ON couriers.id = admin_couriers.courier_id AND couriers.deleted_at IS NULL").
		Where("admin_couriers.admin_id = ? AND admin_couriers.status = ? AND admin_couriers.balance >= ?",
			adminID, enums.RoleStatusApproved, floor).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// TouchAdmin bumps the team's updated_at, used when link churn should
// surface in team listings.
func (r *Repository) TouchAdmin(ctx context.Context, adminID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", adminID).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}
