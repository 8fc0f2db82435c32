package couriers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

// Service manages courier profiles, availability, and the live
// location stream the ranker feeds on.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Courier, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error)
	SetOnline(ctx context.Context, id uuid.UUID, online bool) error
	DeclareCash(ctx context.Context, id uuid.UUID, amount int64) error
	UpdateResidence(ctx context.Context, id uuid.UUID, point geo.Point) error
	ReportLocation(ctx context.Context, id uuid.UUID, point geo.Point) error
	ExpireStaleLocations(ctx context.Context) (int64, error)
}

// RegisterInput carries a new courier profile.
type RegisterInput struct {
	UserID    uuid.UUID
	FullName  string
	Phone     string
	Residence *geo.Point
}

type service struct {
	repo      Repository
	staleness time.Duration
	now       func() time.Time
}

// NewService wires the couriers service. staleness bounds how long a
// live report stays usable before the sweep wipes it.
func NewService(repo Repository, staleness time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("couriers repository is required")
	}
	if staleness <= 0 {
		return nil, fmt.Errorf("staleness window must be positive")
	}
	return &service{repo: repo, staleness: staleness, now: time.Now}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Courier, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if input.Residence != nil {
		if err := validatePoint(*input.Residence); err != nil {
			return nil, err
		}
	}

	courier := &models.Courier{
		UserID:   input.UserID,
		FullName: name,
		Phone:    phone,
		Status:   enums.RoleStatusPending,
	}
	if input.Residence != nil {
		courier.ResidenceLat = &input.Residence.Lat
		courier.ResidenceLng = &input.Residence.Lng
	}
	if err := s.repo.Create(ctx, courier); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_couriers_user_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a courier profile")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating courier")
	}
	return courier, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	courier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading courier")
	}
	return courier, nil
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Courier, error) {
	courier, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading courier")
	}
	return courier, nil
}

func (s *service) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	found, err := s.repo.SetOnline(ctx, id, online)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating availability")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
	}
	return nil
}

func (s *service) DeclareCash(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cash amount must not be negative")
	}
	found, err := s.repo.SetAvailableCash(ctx, id, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cash declaration")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
	}
	return nil
}

func (s *service) UpdateResidence(ctx context.Context, id uuid.UUID, point geo.Point) error {
	if err := validatePoint(point); err != nil {
		return err
	}
	found, err := s.repo.UpdateResidence(ctx, id, point.Lat, point.Lng)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating residence")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
	}
	return nil
}

func (s *service) ReportLocation(ctx context.Context, id uuid.UUID, point geo.Point) error {
	if err := validatePoint(point); err != nil {
		return err
	}
	found, err := s.repo.ReportLiveLocation(ctx, id, point.Lat, point.Lng, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording live location")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
	}
	return nil
}

// ExpireStaleLocations wipes live reports older than the staleness
// window. The cron worker runs this on an interval.
func (s *service) ExpireStaleLocations(ctx context.Context) (int64, error) {
	cleared, err := s.repo.ClearStaleLiveLocations(ctx, s.now().UTC().Add(-s.staleness))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing stale locations")
	}
	return cleared, nil
}

func validatePoint(point geo.Point) error {
	if point.Lat < -90 || point.Lat > 90 {
		return pkgerrors.New(pkgerrors.CodeValidation, "latitude out of range")
	}
	if point.Lng < -180 || point.Lng > 180 {
		return pkgerrors.New(pkgerrors.CodeValidation, "longitude out of range")
	}
	return nil
}
