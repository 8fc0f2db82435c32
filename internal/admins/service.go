package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/config"
	dbpkg "github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
)

// courierCounter reports how many of a team's approved couriers hold a
// link balance at or above the floor.
type courierCounter interface {
	CountFundedCouriers(ctx context.Context, adminID uuid.UUID, floor int64) (int64, error)
}

// Service manages dispatch teams. A team can only publish orders while
// CanOperate holds: enough approved couriers with funded wallets.
type Service interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Admin, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	GetByOwner(ctx context.Context, userID uuid.UUID) (*models.Admin, error)
	DecideTeam(ctx context.Context, input DecideTeamInput) (*models.Admin, error)
	CanOperate(ctx context.Context, adminID uuid.UUID) (bool, error)
}

// CreateTeamInput carries a new team registration.
type CreateTeamInput struct {
	OwnerUserID uuid.UUID
	TeamName    string
	TeamCode    string
}

// DecideTeamInput carries a platform decision on a pending team.
type DecideTeamInput struct {
	AdminID        uuid.UUID
	DeciderAdminID uuid.UUID
	Approve        bool
}

type service struct {
	repo        Repository
	couriers    courierCounter
	operability config.OperabilityConfig
}

// NewService wires the teams service.
func NewService(repo Repository, couriers courierCounter, operability config.OperabilityConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admins repository is required")
	}
	if couriers == nil {
		return nil, fmt.Errorf("courier counter is required")
	}
	return &service{repo: repo, couriers: couriers, operability: operability}, nil
}

func (s *service) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Admin, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id is required")
	}
	name := strings.TrimSpace(input.TeamName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.TeamCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team code is required")
	}

	admin := &models.Admin{
		OwnerUserID: input.OwnerUserID,
		TeamName:    name,
		TeamCode:    code,
		Status:      enums.RoleStatusPending,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_admins_team_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "team code is already in use")
		}
		if dbpkg.IsUniqueViolation(err, "idx_admins_owner_user_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already owns a team")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating team")
	}
	return admin, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading team")
	}
	return admin, nil
}

func (s *service) GetByOwner(ctx context.Context, userID uuid.UUID) (*models.Admin, error) {
	admin, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading team")
	}
	return admin, nil
}

func (s *service) DecideTeam(ctx context.Context, input DecideTeamInput) (*models.Admin, error) {
	decider, err := s.Get(ctx, input.DeciderAdminID)
	if err != nil {
		return nil, err
	}
	if !decider.IsPlatform {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the platform team may approve teams")
	}

	admin, err := s.Get(ctx, input.AdminID)
	if err != nil {
		return nil, err
	}

	status := enums.RoleStatusRejected
	if input.Approve {
		status = enums.RoleStatusApproved
	}
	won, err := s.repo.SetStatus(ctx, admin.ID, enums.RoleStatusPending, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deciding team")
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyDecided, "team was already decided")
	}
	admin.Status = status
	return admin, nil
}

// CanOperate reports whether the team currently meets the operating
// floor. Only approved teams can operate at all.
func (s *service) CanOperate(ctx context.Context, adminID uuid.UUID) (bool, error) {
	admin, err := s.Get(ctx, adminID)
	if err != nil {
		return false, err
	}
	if admin.Status != enums.RoleStatusApproved {
		return false, nil
	}

	funded, err := s.couriers.CountFundedCouriers(ctx, adminID, s.operability.BalanceFloor)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting funded couriers")
	}
	return funded >= int64(s.operability.MinCouriers), nil
}
