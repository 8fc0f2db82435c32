package allies

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

type fakeRepository struct {
	allies    map[uuid.UUID]*models.Ally
	locations map[uuid.UUID]*models.AllyLocation
	blocks    map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		allies:    map[uuid.UUID]*models.Ally{},
		locations: map[uuid.UUID]*models.AllyLocation{},
		blocks:    map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeRepository) Create(ctx context.Context, ally *models.Ally) error {
	if ally.ID == uuid.Nil {
		ally.ID = uuid.New()
	}
	f.allies[ally.ID] = ally
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ally, error) {
	ally, ok := f.allies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ally, nil
}

func (f *fakeRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Ally, error) {
	for _, ally := range f.allies {
		if ally.UserID == userID {
			return ally, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.RoleStatus) (bool, error) {
	ally, ok := f.allies[id]
	if !ok || ally.Status != from {
		return false, nil
	}
	ally.Status = to
	return true, nil
}

func (f *fakeRepository) CreateLocation(ctx context.Context, location *models.AllyLocation) error {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	f.locations[location.ID] = location
	return nil
}

func (f *fakeRepository) FindLocation(ctx context.Context, allyID, locationID uuid.UUID) (*models.AllyLocation, error) {
	location, ok := f.locations[locationID]
	if !ok || location.AllyID != allyID {
		return nil, gorm.ErrRecordNotFound
	}
	return location, nil
}

func (f *fakeRepository) FindDefaultLocation(ctx context.Context, allyID uuid.UUID) (*models.AllyLocation, error) {
	for _, location := range f.locations {
		if location.AllyID == allyID && location.IsDefault {
			return location, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListLocations(ctx context.Context, allyID uuid.UUID) ([]models.AllyLocation, error) {
	var out []models.AllyLocation
	for _, location := range f.locations {
		if location.AllyID == allyID {
			out = append(out, *location)
		}
	}
	return out, nil
}

func (f *fakeRepository) SetDefaultLocation(ctx context.Context, allyID, locationID uuid.UUID) (bool, error) {
	target, ok := f.locations[locationID]
	if !ok || target.AllyID != allyID {
		return false, nil
	}
	for _, location := range f.locations {
		if location.AllyID == allyID {
			location.IsDefault = false
		}
	}
	target.IsDefault = true
	return true, nil
}

func (f *fakeRepository) DeleteLocation(ctx context.Context, allyID, locationID uuid.UUID) (bool, error) {
	location, ok := f.locations[locationID]
	if !ok || location.AllyID != allyID {
		return false, nil
	}
	delete(f.locations, locationID)
	return true, nil
}

func (f *fakeRepository) CreateBlock(ctx context.Context, allyID, courierID uuid.UUID) error {
	if f.blocks[allyID] == nil {
		f.blocks[allyID] = map[uuid.UUID]bool{}
	}
	f.blocks[allyID][courierID] = true
	return nil
}

func (f *fakeRepository) DeleteBlock(ctx context.Context, allyID, courierID uuid.UUID) (bool, error) {
	if !f.blocks[allyID][courierID] {
		return false, nil
	}
	delete(f.blocks[allyID], courierID)
	return true, nil
}

func (f *fakeRepository) ListBlocks(ctx context.Context, allyID uuid.UUID) ([]models.AllyCourierBlock, error) {
	var out []models.AllyCourierBlock
	for courierID := range f.blocks[allyID] {
		out = append(out, models.AllyCourierBlock{AllyID: allyID, CourierID: courierID})
	}
	return out, nil
}

type allyFixture struct {
	svc    Service
	repo   *fakeRepository
	allyID uuid.UUID
}

func newAllyFixture(t *testing.T) *allyFixture {
	t.Helper()

	repo := newFakeRepository()
	allyID := uuid.New()
	repo.allies[allyID] = &models.Ally{
		ID: allyID, UserID: uuid.New(), Name: "Drogueria Norte",
		Phone: "3000000000", Status: enums.RoleStatusApproved,
	}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &allyFixture{svc: svc, repo: repo, allyID: allyID}
}

func TestAddLocation_FirstBecomesDefault(t *testing.T) {
	fx := newAllyFixture(t)

	first, err := fx.svc.AddLocation(context.Background(), AddLocationInput{
		AllyID: fx.allyID, Label: "Sede principal",
		Point: geo.Point{Lat: 4.61, Lng: -74.08},
	})
	if err != nil {
		t.Fatalf("AddLocation error: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("the first saved location must become the default")
	}

	second, err := fx.svc.AddLocation(context.Background(), AddLocationInput{
		AllyID: fx.allyID, Label: "Bodega",
		Point: geo.Point{Lat: 4.65, Lng: -74.10},
	})
	if err != nil {
		t.Fatalf("AddLocation error: %v", err)
	}
	if second.IsDefault {
		t.Fatal("later locations must not silently steal the default")
	}
}

func TestAddLocation_MakeDefaultMovesFlag(t *testing.T) {
	fx := newAllyFixture(t)

	first, err := fx.svc.AddLocation(context.Background(), AddLocationInput{
		AllyID: fx.allyID, Label: "Sede principal",
		Point: geo.Point{Lat: 4.61, Lng: -74.08},
	})
	if err != nil {
		t.Fatalf("AddLocation error: %v", err)
	}

	second, err := fx.svc.AddLocation(context.Background(), AddLocationInput{
		AllyID: fx.allyID, Label: "Bodega",
		Point:       geo.Point{Lat: 4.65, Lng: -74.10},
		MakeDefault: true,
	})
	if err != nil {
		t.Fatalf("AddLocation error: %v", err)
	}
	if !second.IsDefault {
		t.Fatal("the requested location must become the default")
	}
	if fx.repo.locations[first.ID].IsDefault {
		t.Fatal("at most one location may be the default")
	}
}

func TestRemoveLocation_DefaultIsProtected(t *testing.T) {
	fx := newAllyFixture(t)

	location, err := fx.svc.AddLocation(context.Background(), AddLocationInput{
		AllyID: fx.allyID, Label: "Sede principal",
		Point: geo.Point{Lat: 4.61, Lng: -74.08},
	})
	if err != nil {
		t.Fatalf("AddLocation error: %v", err)
	}

	err = fx.svc.RemoveLocation(context.Background(), fx.allyID, location.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAddLocation_Validation(t *testing.T) {
	fx := newAllyFixture(t)

	cases := []struct {
		name  string
		input AddLocationInput
	}{
		{"missing ally", AddLocationInput{Label: "X", Point: geo.Point{}}},
		{"missing label", AddLocationInput{AllyID: fx.allyID, Point: geo.Point{}}},
		{"latitude out of range", AddLocationInput{
			AllyID: fx.allyID, Label: "X", Point: geo.Point{Lat: -91},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.AddLocation(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestBlockCourier_RoundTrip(t *testing.T) {
	fx := newAllyFixture(t)
	courierID := uuid.New()

	if err := fx.svc.BlockCourier(context.Background(), fx.allyID, courierID); err != nil {
		t.Fatalf("BlockCourier error: %v", err)
	}
	blocks, err := fx.svc.ListBlockedCouriers(context.Background(), fx.allyID)
	if err != nil {
		t.Fatalf("ListBlockedCouriers error: %v", err)
	}
	if len(blocks) != 1 || blocks[0].CourierID != courierID {
		t.Fatalf("expected the courier to be blocked, got %v", blocks)
	}

	if err := fx.svc.UnblockCourier(context.Background(), fx.allyID, courierID); err != nil {
		t.Fatalf("UnblockCourier error: %v", err)
	}
	err = fx.svc.UnblockCourier(context.Background(), fx.allyID, courierID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("a second unblock must fail, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	fx := newAllyFixture(t)

	_, err := fx.svc.Register(context.Background(), RegisterInput{Name: "X", Phone: "1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	ally, err := fx.svc.Register(context.Background(), RegisterInput{
		UserID: uuid.New(), Name: "Drogueria Sur", Phone: "3011111111",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if ally.Status != enums.RoleStatusPending {
		t.Fatalf("new allies must start PENDING, got %s", ally.Status)
	}
}
