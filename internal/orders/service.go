package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/internal/pricing"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

// allyDirectory resolves ally team links and saved pickup locations.
type allyDirectory interface {
	FindAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error)
	FindLocation(ctx context.Context, allyID, locationID uuid.UUID) (*models.AllyLocation, error)
	FindDefaultLocation(ctx context.Context, allyID uuid.UUID) (*models.AllyLocation, error)
}

// Geocoder resolves a street address to coordinates. Implementations
// return a nil point when the address cannot be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geo.Point, error)
}

// Service creates and reads delivery orders. Dispatch transitions live
// in the dispatch coordinator; this service owns intake and pricing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByAlly(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error)
	ListByCourier(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error)
}

type service struct {
	repo      Repository
	directory allyDirectory
	pricer    pricing.Calculator
	geocoder  Geocoder
}

// CreateInput captures a new delivery order. Pickup resolution order:
// explicit coordinates, then the named saved location, then the ally's
// default location.
type CreateInput struct {
	AllyID             uuid.UUID
	AdminID            uuid.UUID
	Pickup             *geo.Point
	PickupLocationID   *uuid.UUID
	DropoffAddress     string
	Dropoff            *geo.Point
	RequiresCash       bool
	CashRequiredAmount int64
	Notes              *string
}

// NewService wires the orders service. The geocoder may be nil; orders
// without dropoff coordinates then price at the base rate.
func NewService(repo Repository, directory allyDirectory, pricer pricing.Calculator, geocoder Geocoder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if directory == nil {
		return nil, fmt.Errorf("ally directory required")
	}
	return &service{repo: repo, directory: directory, pricer: pricer, geocoder: geocoder}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.AllyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ally id is required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if input.DropoffAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dropoff address is required")
	}
	if input.RequiresCash && input.CashRequiredAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cash required amount must be positive")
	}

	link, err := s.directory.FindAllyLink(ctx, input.AdminID, input.AllyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ally is not linked to this team")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving ally link")
	}
	if link.Status != enums.RoleStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ally link is not approved")
	}

	pickup, err := s.resolvePickup(ctx, input)
	if err != nil {
		return nil, err
	}

	dropoff := input.Dropoff
	if dropoff == nil && s.geocoder != nil {
		point, err := s.geocoder.Geocode(ctx, input.DropoffAddress)
		if err == nil {
			dropoff = point
		}
	}

	var distanceKM float64
	price := s.pricer.BaseFee()
	if dropoff != nil {
		distanceKM = geo.HaversineKM(pickup, *dropoff)
		price = s.pricer.PriceForDistance(distanceKM)
	}

	order := &models.Order{
		AllyID:             input.AllyID,
		AdminID:            input.AdminID,
		Status:             enums.OrderStatusPending,
		PickupLat:          pickup.Lat,
		PickupLng:          pickup.Lng,
		DropoffAddress:     input.DropoffAddress,
		RequiresCash:       input.RequiresCash,
		CashRequiredAmount: input.CashRequiredAmount,
		Price:              price,
		DistanceKM:         distanceKM,
		Notes:              input.Notes,
	}
	if dropoff != nil {
		order.DropoffLat = &dropoff.Lat
		order.DropoffLng = &dropoff.Lng
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	return order, nil
}

func (s *service) resolvePickup(ctx context.Context, input CreateInput) (geo.Point, error) {
	if input.Pickup != nil {
		return *input.Pickup, nil
	}
	if input.PickupLocationID != nil {
		location, err := s.directory.FindLocation(ctx, input.AllyID, *input.PickupLocationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return geo.Point{}, pkgerrors.New(pkgerrors.CodeNotFound, "pickup location not found")
			}
			return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pickup location")
		}
		return geo.Point{Lat: location.Lat, Lng: location.Lng}, nil
	}
	location, err := s.directory.FindDefaultLocation(ctx, input.AllyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return geo.Point{}, pkgerrors.New(pkgerrors.CodeValidation, "pickup coordinates or a default location are required")
		}
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading default pickup location")
	}
	return geo.Point{Lat: location.Lat, Lng: location.Lng}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) ListByAlly(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error) {
	if params.Scope == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "ally id is required")
	}
	return s.repo.ListByAlly(ctx, params)
}

func (s *service) ListByCourier(ctx context.Context, params ListParams) ([]models.Order, *pagination.Cursor, error) {
	if params.Scope == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}
	return s.repo.ListByCourier(ctx, params)
}
