package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
)

type fakeLinkRepository struct {
	admins       map[uuid.UUID]*models.Admin
	courierLinks map[uuid.UUID]*models.AdminCourier
	allyLinks    map[uuid.UUID]*models.AdminAlly
}

func newFakeLinkRepository() *fakeLinkRepository {
	return &fakeLinkRepository{
		admins:       map[uuid.UUID]*models.Admin{},
		courierLinks: map[uuid.UUID]*models.AdminCourier{},
		allyLinks:    map[uuid.UUID]*models.AdminAlly{},
	}
}

func (f *fakeLinkRepository) FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (f *fakeLinkRepository) FindAdminByTeamCode(ctx context.Context, code string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.TeamCode == code {
			return admin, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkRepository) CreateCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error) {
	link := &models.AdminCourier{
		ID: uuid.New(), AdminID: adminID, CourierID: courierID,
		Status: enums.RoleStatusPending,
	}
	f.courierLinks[link.ID] = link
	return link, nil
}

func (f *fakeLinkRepository) CreateAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error) {
	link := &models.AdminAlly{
		ID: uuid.New(), AdminID: adminID, AllyID: allyID,
		Status: enums.RoleStatusPending,
	}
	f.allyLinks[link.ID] = link
	return link, nil
}

func (f *fakeLinkRepository) SetCourierLinkStatus(ctx context.Context, linkID uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	link, ok := f.courierLinks[linkID]
	if !ok || link.Status != from {
		return false, nil
	}
	link.Status = to
	return true, nil
}

func (f *fakeLinkRepository) SetAllyLinkStatus(ctx context.Context, linkID uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	link, ok := f.allyLinks[linkID]
	if !ok || link.Status != from {
		return false, nil
	}
	link.Status = to
	return true, nil
}

func (f *fakeLinkRepository) ListTeamCouriers(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]CourierMember, error) {
	return nil, nil
}

func (f *fakeLinkRepository) ListTeamAllies(ctx context.Context, adminID uuid.UUID, status *enums.RoleStatus) ([]AllyMember, error) {
	return nil, nil
}

func (f *fakeLinkRepository) ListCourierTeams(ctx context.Context, courierID uuid.UUID) ([]models.AdminCourier, error) {
	var links []models.AdminCourier
	for _, link := range f.courierLinks {
		if link.CourierID == courierID {
			links = append(links, *link)
		}
	}
	return links, nil
}

func (f *fakeLinkRepository) ListAllyTeams(ctx context.Context, allyID uuid.UUID) ([]models.AdminAlly, error) {
	return nil, nil
}

func (f *fakeLinkRepository) FindCourierLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminCourier, error) {
	link, ok := f.courierLinks[linkID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return link, nil
}

func (f *fakeLinkRepository) FindAllyLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminAlly, error) {
	link, ok := f.allyLinks[linkID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return link, nil
}

type recordingLinkNotifier struct {
	courierDecisions int
	allyDecisions    int
}

func (n *recordingLinkNotifier) CourierLinkDecided(ctx context.Context, link *models.AdminCourier) {
	n.courierDecisions++
}

func (n *recordingLinkNotifier) AllyLinkDecided(ctx context.Context, link *models.AdminAlly) {
	n.allyDecisions++
}

type linkFixture struct {
	svc      Service
	repo     *fakeLinkRepository
	notifier *recordingLinkNotifier
	adminID  uuid.UUID
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()

	repo := newFakeLinkRepository()
	adminID := uuid.New()
	repo.admins[adminID] = &models.Admin{
		ID: adminID, TeamName: "Centro", TeamCode: "CENTRO-01",
		Status: enums.RoleStatusApproved,
	}

	notifier := &recordingLinkNotifier{}
	svc, err := NewService(repo, notifier)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &linkFixture{svc: svc, repo: repo, notifier: notifier, adminID: adminID}
}

func TestRequestCourierLink_CreatesPending(t *testing.T) {
	fx := newLinkFixture(t)
	courierID := uuid.New()

	link, err := fx.svc.RequestCourierLink(context.Background(), "CENTRO-01", courierID)
	if err != nil {
		t.Fatalf("RequestCourierLink error: %v", err)
	}
	if link.Status != enums.RoleStatusPending {
		t.Fatalf("new links must start PENDING, got %s", link.Status)
	}
	if link.AdminID != fx.adminID {
		t.Fatal("link must target the team resolved from the code")
	}
	if link.Balance != 0 {
		t.Fatalf("new links must start with a zero balance, got %d", link.Balance)
	}
}

func TestRequestCourierLink_UnknownTeamCode(t *testing.T) {
	fx := newLinkFixture(t)

	_, err := fx.svc.RequestCourierLink(context.Background(), "NOPE", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequestCourierLink_UnapprovedTeamRejectsJoins(t *testing.T) {
	fx := newLinkFixture(t)
	fx.repo.admins[fx.adminID].Status = enums.RoleStatusPending

	_, err := fx.svc.RequestCourierLink(context.Background(), "CENTRO-01", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDecideCourierLink_ApprovesOnce(t *testing.T) {
	fx := newLinkFixture(t)
	link, err := fx.svc.RequestCourierLink(context.Background(), "CENTRO-01", uuid.New())
	if err != nil {
		t.Fatalf("RequestCourierLink error: %v", err)
	}

	decided, err := fx.svc.DecideCourierLink(context.Background(), DecideLinkInput{
		LinkID: link.ID, DeciderAdminID: fx.adminID, Approve: true,
	})
	if err != nil {
		t.Fatalf("DecideCourierLink error: %v", err)
	}
	if decided.Status != enums.RoleStatusApproved {
		t.Fatalf("expected APPROVED, got %s", decided.Status)
	}
	if fx.notifier.courierDecisions != 1 {
		t.Fatalf("expected one decision notification, got %d", fx.notifier.courierDecisions)
	}

	_, err = fx.svc.DecideCourierLink(context.Background(), DecideLinkInput{
		LinkID: link.ID, DeciderAdminID: fx.adminID, Approve: false,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyDecided {
		t.Fatalf("second decision must fail, got %v", err)
	}
}

func TestDecideCourierLink_OtherTeamsCannotDecide(t *testing.T) {
	fx := newLinkFixture(t)
	link, err := fx.svc.RequestCourierLink(context.Background(), "CENTRO-01", uuid.New())
	if err != nil {
		t.Fatalf("RequestCourierLink error: %v", err)
	}

	otherID := uuid.New()
	fx.repo.admins[otherID] = &models.Admin{ID: otherID, Status: enums.RoleStatusApproved}

	_, err = fx.svc.DecideCourierLink(context.Background(), DecideLinkInput{
		LinkID: link.ID, DeciderAdminID: otherID, Approve: true,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDecideCourierLink_PlatformAdminMayDecide(t *testing.T) {
	fx := newLinkFixture(t)
	link, err := fx.svc.RequestCourierLink(context.Background(), "CENTRO-01", uuid.New())
	if err != nil {
		t.Fatalf("RequestCourierLink error: %v", err)
	}

	platformID := uuid.New()
	fx.repo.admins[platformID] = &models.Admin{
		ID: platformID, Status: enums.RoleStatusApproved, IsPlatform: true,
	}

	decided, err := fx.svc.DecideCourierLink(context.Background(), DecideLinkInput{
		LinkID: link.ID, DeciderAdminID: platformID, Approve: true,
	})
	if err != nil {
		t.Fatalf("DecideCourierLink error: %v", err)
	}
	if decided.Status != enums.RoleStatusApproved {
		t.Fatalf("expected APPROVED, got %s", decided.Status)
	}
}

func TestDecideAllyLink_RejectKeepsZeroBalance(t *testing.T) {
	fx := newLinkFixture(t)
	link, err := fx.svc.RequestAllyLink(context.Background(), "CENTRO-01", uuid.New())
	if err != nil {
		t.Fatalf("RequestAllyLink error: %v", err)
	}

	decided, err := fx.svc.DecideAllyLink(context.Background(), DecideLinkInput{
		LinkID: link.ID, DeciderAdminID: fx.adminID, Approve: false,
	})
	if err != nil {
		t.Fatalf("DecideAllyLink error: %v", err)
	}
	if decided.Status != enums.RoleStatusRejected {
		t.Fatalf("expected REJECTED, got %s", decided.Status)
	}
	if fx.notifier.allyDecisions != 1 {
		t.Fatalf("expected one decision notification, got %d", fx.notifier.allyDecisions)
	}
}

func TestRequestLink_Validation(t *testing.T) {
	fx := newLinkFixture(t)

	cases := []struct {
		name string
		run  func() error
	}{
		{"courier empty code", func() error {
			_, err := fx.svc.RequestCourierLink(context.Background(), "", uuid.New())
			return err
		}},
		{"courier nil id", func() error {
			_, err := fx.svc.RequestCourierLink(context.Background(), "CENTRO-01", uuid.Nil)
			return err
		}},
		{"ally empty code", func() error {
			_, err := fx.svc.RequestAllyLink(context.Background(), "", uuid.New())
			return err
		}},
		{"ally nil id", func() error {
			_, err := fx.svc.RequestAllyLink(context.Background(), "CENTRO-01", uuid.Nil)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typed := pkgerrors.As(tc.run())
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", typed)
			}
		})
	}
}
