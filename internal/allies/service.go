package allies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

// Service manages ally profiles, their saved pickup locations, and the
// courier blocklist that trims their offer queues.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Ally, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ally, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Ally, error)

	AddLocation(ctx context.Context, input AddLocationInput) (*models.AllyLocation, error)
	ListLocations(ctx context.Context, allyID uuid.UUID) ([]models.AllyLocation, error)
	SetDefaultLocation(ctx context.Context, allyID, locationID uuid.UUID) error
	RemoveLocation(ctx context.Context, allyID, locationID uuid.UUID) error

	BlockCourier(ctx context.Context, allyID, courierID uuid.UUID) error
	UnblockCourier(ctx context.Context, allyID, courierID uuid.UUID) error
	ListBlockedCouriers(ctx context.Context, allyID uuid.UUID) ([]models.AllyCourierBlock, error)
}

// RegisterInput carries a new ally profile.
type RegisterInput struct {
	UserID uuid.UUID
	Name   string
	Phone  string
}

// AddLocationInput carries a new saved pickup point. The first location
// an ally saves becomes the default automatically.
type AddLocationInput struct {
	AllyID      uuid.UUID
	Label       string
	Point       geo.Point
	MakeDefault bool
}

type service struct {
	repo Repository
}

// NewService wires the allies service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("allies repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Ally, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	ally := &models.Ally{
		UserID: input.UserID,
		Name:   name,
		Phone:  phone,
		Status: enums.RoleStatusPending,
	}
	if err := s.repo.Create(ctx, ally); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_allies_user_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has an ally profile")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating ally")
	}
	return ally, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Ally, error) {
	ally, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ally not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ally")
	}
	return ally, nil
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Ally, error) {
	ally, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ally not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ally")
	}
	return ally, nil
}

func (s *service) AddLocation(ctx context.Context, input AddLocationInput) (*models.AllyLocation, error) {
	if input.AllyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ally id is required")
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}
	if input.Point.Lat < -90 || input.Point.Lat > 90 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude out of range")
	}
	if input.Point.Lng < -180 || input.Point.Lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "longitude out of range")
	}

	if _, err := s.Get(ctx, input.AllyID); err != nil {
		return nil, err
	}

	makeDefault := input.MakeDefault
	if !makeDefault {
		_, err := s.repo.FindDefaultLocation(ctx, input.AllyID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			makeDefault = true
		} else if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking default location")
		}
	}

	location := &models.AllyLocation{
		AllyID: input.AllyID,
		Label:  label,
		Lat:    input.Point.Lat,
		Lng:    input.Point.Lng,
	}
	if err := s.repo.CreateLocation(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating location")
	}
	if makeDefault {
		if _, err := s.repo.SetDefaultLocation(ctx, input.AllyID, location.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flagging default location")
		}
		location.IsDefault = true
	}
	return location, nil
}

func (s *service) ListLocations(ctx context.Context, allyID uuid.UUID) ([]models.AllyLocation, error) {
	locations, err := s.repo.ListLocations(ctx, allyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing locations")
	}
	return locations, nil
}

func (s *service) SetDefaultLocation(ctx context.Context, allyID, locationID uuid.UUID) error {
	found, err := s.repo.SetDefaultLocation(ctx, allyID, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting default location")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return nil
}

func (s *service) RemoveLocation(ctx context.Context, allyID, locationID uuid.UUID) error {
	location, err := s.repo.FindLocation(ctx, allyID, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading location")
	}
	if location.IsDefault {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the default location cannot be removed")
	}

	found, err := s.repo.DeleteLocation(ctx, allyID, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing location")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return nil
}

func (s *service) BlockCourier(ctx context.Context, allyID, courierID uuid.UUID) error {
	if allyID == uuid.Nil || courierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ally id and courier id are required")
	}
	if err := s.repo.CreateBlock(ctx, allyID, courierID); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_ally_courier_block") {
			return pkgerrors.New(pkgerrors.CodeConflict, "courier is already blocked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "blocking courier")
	}
	return nil
}

func (s *service) UnblockCourier(ctx context.Context, allyID, courierID uuid.UUID) error {
	found, err := s.repo.DeleteBlock(ctx, allyID, courierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unblocking courier")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "block not found")
	}
	return nil
}

func (s *service) ListBlockedCouriers(ctx context.Context, allyID uuid.UUID) ([]models.AllyCourierBlock, error) {
	blocks, err := s.repo.ListBlocks(ctx, allyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing blocked couriers")
	}
	return blocks, nil
}
