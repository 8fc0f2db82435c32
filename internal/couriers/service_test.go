package couriers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

type fakeRepository struct {
	couriers map[uuid.UUID]*models.Courier
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{couriers: map[uuid.UUID]*models.Courier{}}
}

func (f *fakeRepository) Create(ctx context.Context, courier *models.Courier) error {
	if courier.ID == uuid.Nil {
		courier.ID = uuid.New()
	}
	f.couriers[courier.ID] = courier
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	courier, ok := f.couriers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return courier, nil
}

func (f *fakeRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	for _, courier := range f.couriers {
		if courier.UserID == userID {
			return courier, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	courier, ok := f.couriers[id]
	if !ok || courier.Status != from {
		return false, nil
	}
	courier.Status = to
	return true, nil
}

func (f *fakeRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool) (bool, error) {
	courier, ok := f.couriers[id]
	if !ok {
		return false, nil
	}
	courier.Online = online
	return true, nil
}

func (f *fakeRepository) SetAvailableCash(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	courier, ok := f.couriers[id]
	if !ok {
		return false, nil
	}
	courier.AvailableCash = amount
	return true, nil
}

func (f *fakeRepository) UpdateResidence(ctx context.Context, id uuid.UUID, lat, lng float64) (bool, error) {
	courier, ok := f.couriers[id]
	if !ok {
		return false, nil
	}
	courier.ResidenceLat = &lat
	courier.ResidenceLng = &lng
	return true, nil
}

func (f *fakeRepository) ReportLiveLocation(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) (bool, error) {
	courier, ok := f.couriers[id]
	if !ok {
		return false, nil
	}
	courier.LiveLat = &lat
	courier.LiveLng = &lng
	courier.LiveReportedAt = &at
	return true, nil
}

func (f *fakeRepository) ClearStaleLiveLocations(ctx context.Context, cutoff time.Time) (int64, error) {
	var cleared int64
	for _, courier := range f.couriers {
		if courier.LiveReportedAt != nil && courier.LiveReportedAt.Before(cutoff) {
			courier.LiveLat = nil
			courier.LiveLng = nil
			courier.LiveReportedAt = nil
			cleared++
		}
	}
	return cleared, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.couriers, id)
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, 120*time.Second)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestRegister_StartsPendingOffline(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	courier, err := svc.Register(context.Background(), RegisterInput{
		UserID:    uuid.New(),
		FullName:  "Diana Mora",
		Phone:     "3001234567",
		Residence: &geo.Point{Lat: 4.61, Lng: -74.08},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if courier.Status != enums.RoleStatusPending {
		t.Fatalf("new couriers must start PENDING, got %s", courier.Status)
	}
	if courier.Online {
		t.Fatal("new couriers must start offline")
	}
	if courier.ResidenceLat == nil || *courier.ResidenceLat != 4.61 {
		t.Fatal("residence coordinates must be stored")
	}
	if courier.LiveLat != nil {
		t.Fatal("new couriers must have no live location")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t, newFakeRepository())

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing user", RegisterInput{FullName: "A", Phone: "1"}},
		{"missing name", RegisterInput{UserID: uuid.New(), Phone: "1"}},
		{"missing phone", RegisterInput{UserID: uuid.New(), FullName: "A"}},
		{"latitude out of range", RegisterInput{
			UserID: uuid.New(), FullName: "A", Phone: "1",
			Residence: &geo.Point{Lat: 91, Lng: 0},
		}},
		{"longitude out of range", RegisterInput{
			UserID: uuid.New(), FullName: "A", Phone: "1",
			Residence: &geo.Point{Lat: 0, Lng: 181},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReportLocation_StampsReportTime(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	courier := &models.Courier{ID: uuid.New(), UserID: uuid.New()}
	repo.couriers[courier.ID] = courier

	reportAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return reportAt }

	if err := svc.ReportLocation(context.Background(), courier.ID, geo.Point{Lat: 4.62, Lng: -74.07}); err != nil {
		t.Fatalf("ReportLocation error: %v", err)
	}
	if courier.LiveLat == nil || *courier.LiveLat != 4.62 {
		t.Fatal("live coordinates must be stored")
	}
	if courier.LiveReportedAt == nil || !courier.LiveReportedAt.Equal(reportAt) {
		t.Fatal("the report time must be stamped")
	}
}

func TestExpireStaleLocations_OnlyClearsOldReports(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	fresh := now.Add(-30 * time.Second)
	stale := now.Add(-5 * time.Minute)
	lat, lng := 4.6, -74.08

	freshCourier := &models.Courier{ID: uuid.New(), LiveLat: &lat, LiveLng: &lng, LiveReportedAt: &fresh}
	staleCourier := &models.Courier{ID: uuid.New(), LiveLat: &lat, LiveLng: &lng, LiveReportedAt: &stale}
	repo.couriers[freshCourier.ID] = freshCourier
	repo.couriers[staleCourier.ID] = staleCourier

	cleared, err := svc.ExpireStaleLocations(context.Background())
	if err != nil {
		t.Fatalf("ExpireStaleLocations error: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared report, got %d", cleared)
	}
	if staleCourier.LiveLat != nil || staleCourier.LiveReportedAt != nil {
		t.Fatal("stale live location must be wiped")
	}
	if freshCourier.LiveLat == nil {
		t.Fatal("fresh live location must survive")
	}
}

func TestDeclareCash_RejectsNegative(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	courier := &models.Courier{ID: uuid.New()}
	repo.couriers[courier.ID] = courier

	err := svc.DeclareCash(context.Background(), courier.ID, -1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := svc.DeclareCash(context.Background(), courier.ID, 50000); err != nil {
		t.Fatalf("DeclareCash error: %v", err)
	}
	if courier.AvailableCash != 50000 {
		t.Fatalf("expected declared cash stored, got %d", courier.AvailableCash)
	}
}

func TestSetOnline_UnknownCourier(t *testing.T) {
	svc := newTestService(t, newFakeRepository())

	err := svc.SetOnline(context.Background(), uuid.New(), true)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
