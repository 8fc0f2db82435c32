package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
)

// LinkNotifier tells a courier or ally that their link request was
// decided. It may be nil.
type LinkNotifier interface {
	CourierLinkDecided(ctx context.Context, link *models.AdminCourier)
	AllyLinkDecided(ctx context.Context, link *models.AdminAlly)
}

// Service runs the team link workflow. Couriers and allies request a
// link with a team code; the team owner approves or rejects it exactly
// once.
type Service interface {
	RequestCourierLink(ctx context.Context, teamCode string, courierID uuid.UUID) (*models.AdminCourier, error)
	RequestAllyLink(ctx context.Context, teamCode string, allyID uuid.UUID) (*models.AdminAlly, error)
	DecideCourierLink(ctx context.Context, input DecideLinkInput) (*models.AdminCourier, error)
	DecideAllyLink(ctx context.Context, input DecideLinkInput) (*models.AdminAlly, error)
	ListTeamCouriers(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]CourierMember, error)
	ListTeamAllies(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]AllyMember, error)
	ListCourierTeams(ctx context.Context, courierID uuid.UUID) ([]models.AdminCourier, error)
	ListAllyTeams(ctx context.Context, allyID uuid.UUID) ([]models.AdminAlly, error)
}

// DecideLinkInput carries an approval or rejection of a pending link.
type DecideLinkInput struct {
	LinkID         uuid.UUID
	DeciderAdminID uuid.UUID
	Approve        bool
}

type linkRepository interface {
	FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	FindAdminByTeamCode(ctx context.Context, code string) (*models.Admin, error)
	CreateCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error)
	CreateAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error)
	SetCourierLinkStatus(ctx context.Context, linkID uuid.UUID, from, to enums.RoleStatus) (bool, error)
	SetAllyLinkStatus(ctx context.Context, linkID uuid.UUID, from, to enums.RoleStatus) (bool, error)
	ListTeamCouriers(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]CourierMember, error)
	ListTeamAllies(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]AllyMember, error)
	ListCourierTeams(ctx context.Context, courierID uuid.UUID) ([]models.AdminCourier, error)
	ListAllyTeams(ctx context.Context, allyID uuid.UUID) ([]models.AdminAlly, error)
	FindCourierLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminCourier, error)
	FindAllyLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminAlly, error)
}

type service struct {
	repo     linkRepository
	notifier LinkNotifier
}

// NewService wires the membership service. Notifier may be nil.
func NewService(repo linkRepository, notifier LinkNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	return &service{repo: repo, notifier: notifier}, nil
}

func (s *service) RequestCourierLink(ctx context.Context, teamCode string, courierID uuid.UUID) (*models.AdminCourier, error) {
	if teamCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team code is required")
	}
	if courierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}

	admin, err := s.resolveTeam(ctx, teamCode)
	if err != nil {
		return nil, err
	}

	link, err := s.repo.CreateCourierLink(ctx, admin.ID, courierID)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_admin_courier") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "courier is already linked to this team")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating courier link")
	}
	return link, nil
}

func (s *service) RequestAllyLink(ctx context.Context, teamCode string, allyID uuid.UUID) (*models.AdminAlly, error) {
	if teamCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team code is required")
	}
	if allyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ally id is required")
	}

	admin, err := s.resolveTeam(ctx, teamCode)
	if err != nil {
		return nil, err
	}

	link, err := s.repo.CreateAllyLink(ctx, admin.ID, allyID)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_admin_ally") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ally is already linked to this team")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating ally link")
	}
	return link, nil
}

func (s *service) DecideCourierLink(ctx context.Context, input DecideLinkInput) (*models.AdminCourier, error) {
	link, err := s.repo.FindCourierLinkByID(ctx, input.LinkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading link")
	}
	if err := s.authorizeDecision(ctx, link.AdminID, input.DeciderAdminID); err != nil {
		return nil, err
	}

	status := enums.RoleStatusRejected
	if input.Approve {
		status = enums.RoleStatusApproved
	}
	won, err := s.repo.SetCourierLinkStatus(ctx, link.ID, enums.RoleStatusPending, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deciding link")
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyDecided, "link was already decided")
	}
	link.Status = status

	if s.notifier != nil {
		s.notifier.CourierLinkDecided(ctx, link)
	}
	return link, nil
}

func (s *service) DecideAllyLink(ctx context.Context, input DecideLinkInput) (*models.AdminAlly, error) {
	link, err := s.repo.FindAllyLinkByID(ctx, input.LinkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading link")
	}
	if err := s.authorizeDecision(ctx, link.AdminID, input.DeciderAdminID); err != nil {
		return nil, err
	}

	status := enums.RoleStatusRejected
	if input.Approve {
		status = enums.RoleStatusApproved
	}
	won, err := s.repo.SetAllyLinkStatus(ctx, link.ID, enums.RoleStatusPending, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deciding link")
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyDecided, "link was already decided")
	}
	link.Status = status

	if s.notifier != nil {
		s.notifier.AllyLinkDecided(ctx, link)
	}
	return link, nil
}

func (s *service) ListTeamCouriers(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]CourierMember, error) {
	members, err := s.repo.ListTeamCouriers(ctx, adminID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing team couriers")
	}
	return members, nil
}

func (s *service) ListTeamAllies(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]AllyMember, error) {
	members, err := s.repo.ListTeamAllies(ctx, adminID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing team allies")
	}
	return members, nil
}

func (s *service) ListCourierTeams(ctx context.Context, courierID uuid.UUID) ([]models.AdminCourier, error) {
	links, err := s.repo.ListCourierTeams(ctx, courierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing courier teams")
	}
	return links, nil
}

func (s *service) ListAllyTeams(ctx context.Context, allyID uuid.UUID) ([]models.AdminAlly, error) {
	links, err := s.repo.ListAllyTeams(ctx, allyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing ally teams")
	}
	return links, nil
}

func (s *service) resolveTeam(ctx context.Context, teamCode string) (*models.Admin, error) {
	admin, err := s.repo.FindAdminByTeamCode(ctx, teamCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving team")
	}
	if admin.Status != enums.RoleStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "team is not accepting members")
	}
	return admin, nil
}

func (s *service) authorizeDecision(ctx context.Context, linkAdminID, deciderAdminID uuid.UUID) error {
	if deciderAdminID == linkAdminID {
		return nil
	}
	decider, err := s.repo.FindAdmin(ctx, deciderAdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to decide this link")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading decider")
	}
	if !decider.IsPlatform {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to decide this link")
	}
	return nil
}
