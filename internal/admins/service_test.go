package admins

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
)

type fakeRepository struct {
	admins map[uuid.UUID]*models.Admin
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{admins: map[uuid.UUID]*models.Admin{}}
}

func (f *fakeRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	f.admins[admin.ID] = admin
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (f *fakeRepository) FindByOwner(ctx context.Context, userID uuid.UUID) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.OwnerUserID == userID {
			return admin, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	admin, ok := f.admins[id]
	if !ok || admin.Status != from {
		return false, nil
	}
	admin.Status = to
	return true, nil
}

func (f *fakeRepository) ListByStatus(ctx context.Context, status enums.RoleStatus) ([]models.Admin, error) {
	var out []models.Admin
	for _, admin := range f.admins {
		if admin.Status == status {
			out = append(out, *admin)
		}
	}
	return out, nil
}

type fakeCourierCounter struct {
	funded int64
}

func (f *fakeCourierCounter) CountFundedCouriers(ctx context.Context, adminID uuid.UUID, floor int64) (int64, error) {
	return f.funded, nil
}

func newTestService(t *testing.T, repo Repository, funded int64) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeCourierCounter{funded: funded}, config.OperabilityConfig{
		MinCouriers:  10,
		BalanceFloor: 5000,
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestCreateTeam_StartsPending(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, 0)

	admin, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		OwnerUserID: uuid.New(),
		TeamName:    "Centro",
		TeamCode:    "centro-01",
	})
	if err != nil {
		t.Fatalf("CreateTeam error: %v", err)
	}
	if admin.Status != enums.RoleStatusPending {
		t.Fatalf("new teams must start PENDING, got %s", admin.Status)
	}
	if admin.TeamCode != "CENTRO-01" {
		t.Fatalf("team codes must be uppercased, got %q", admin.TeamCode)
	}
	if admin.Balance != 0 {
		t.Fatalf("new teams must start with a zero balance, got %d", admin.Balance)
	}
}

func TestCreateTeam_Validation(t *testing.T) {
	svc := newTestService(t, newFakeRepository(), 0)

	cases := []struct {
		name  string
		input CreateTeamInput
	}{
		{"missing owner", CreateTeamInput{TeamName: "Centro", TeamCode: "C1"}},
		{"missing name", CreateTeamInput{OwnerUserID: uuid.New(), TeamCode: "C1"}},
		{"missing code", CreateTeamInput{OwnerUserID: uuid.New(), TeamName: "Centro"}},
		{"blank name", CreateTeamInput{OwnerUserID: uuid.New(), TeamName: "   ", TeamCode: "C1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTeam(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecideTeam_PlatformOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, 0)

	pending := &models.Admin{ID: uuid.New(), Status: enums.RoleStatusPending}
	ordinary := &models.Admin{ID: uuid.New(), Status: enums.RoleStatusApproved}
	platform := &models.Admin{ID: uuid.New(), Status: enums.RoleStatusApproved, IsPlatform: true}
	repo.admins[pending.ID] = pending
	repo.admins[ordinary.ID] = ordinary
	repo.admins[platform.ID] = platform

	_, err := svc.DecideTeam(context.Background(), DecideTeamInput{
		AdminID: pending.ID, DeciderAdminID: ordinary.ID, Approve: true,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	decided, err := svc.DecideTeam(context.Background(), DecideTeamInput{
		AdminID: pending.ID, DeciderAdminID: platform.ID, Approve: true,
	})
	if err != nil {
		t.Fatalf("DecideTeam error: %v", err)
	}
	if decided.Status != enums.RoleStatusApproved {
		t.Fatalf("expected APPROVED, got %s", decided.Status)
	}

	_, err = svc.DecideTeam(context.Background(), DecideTeamInput{
		AdminID: pending.ID, DeciderAdminID: platform.ID, Approve: false,
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyDecided {
		t.Fatalf("second decision must fail, got %v", err)
	}
}

func TestCanOperate_RequiresFundedCourierFloor(t *testing.T) {
	repo := newFakeRepository()
	admin := &models.Admin{ID: uuid.New(), Status: enums.RoleStatusApproved}
	repo.admins[admin.ID] = admin

	cases := []struct {
		name   string
		funded int64
		want   bool
	}{
		{"nine funded couriers is not enough", 9, false},
		{"exactly ten funded couriers operates", 10, true},
		{"comfortably above the floor", 25, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, repo, tc.funded)
			got, err := svc.CanOperate(context.Background(), admin.ID)
			if err != nil {
				t.Fatalf("CanOperate error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("CanOperate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanOperate_UnapprovedTeamNeverOperates(t *testing.T) {
	repo := newFakeRepository()
	admin := &models.Admin{ID: uuid.New(), Status: enums.RoleStatusPending}
	repo.admins[admin.ID] = admin

	svc := newTestService(t, repo, 50)
	got, err := svc.CanOperate(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("CanOperate error: %v", err)
	}
	if got {
		t.Fatal("a pending team must not operate regardless of courier count")
	}
}
