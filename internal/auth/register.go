package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/internal/admins"
	"github.com/domiquerendona/domiq-backend/internal/allies"
	"github.com/domiquerendona/domiq-backend/internal/couriers"
	"github.com/domiquerendona/domiq-backend/internal/users"
	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/security"
)

// RegisterService handles the onboarding transactions. Courier and ally
// profiles start PENDING and only participate once a team approves a
// membership link; teams start PENDING until the platform approves them.
type RegisterService interface {
	RegisterCourier(ctx context.Context, req RegisterCourierRequest) (*users.UserDTO, error)
	RegisterAlly(ctx context.Context, req RegisterAllyRequest) (*users.UserDTO, error)
	RegisterTeam(ctx context.Context, req RegisterTeamRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flows.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) RegisterCourier(ctx context.Context, req RegisterCourierRequest) (*users.UserDTO, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if req.Residence != nil && !req.Residence.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "residence coordinates out of range")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := createUser(ctx, tx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        &phone,
			Role:         enums.UserRoleCourier,
		})
		if err != nil {
			return err
		}

		courier := &models.Courier{
			UserID:   user.ID,
			FullName: strings.TrimSpace(req.FirstName + " " + req.LastName),
			Phone:    phone,
			Status:   enums.RoleStatusPending,
		}
		if req.Residence != nil {
			courier.ResidenceLat = &req.Residence.Lat
			courier.ResidenceLng = &req.Residence.Lng
		}
		if err := couriers.NewRepository(tx).Create(ctx, courier); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create courier profile")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *registerService) RegisterAlly(ctx context.Context, req RegisterAllyRequest) (*users.UserDTO, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	businessName := strings.TrimSpace(req.BusinessName)
	if businessName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	businessPhone := phone
	if req.BusinessPhone != nil && strings.TrimSpace(*req.BusinessPhone) != "" {
		businessPhone = strings.TrimSpace(*req.BusinessPhone)
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := createUser(ctx, tx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        &phone,
			Role:         enums.UserRoleAlly,
		})
		if err != nil {
			return err
		}

		ally := &models.Ally{
			UserID: user.ID,
			Name:   businessName,
			Phone:  businessPhone,
			Status: enums.RoleStatusPending,
		}
		if err := allies.NewRepository(tx).Create(ctx, ally); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create ally profile")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *registerService) RegisterTeam(ctx context.Context, req RegisterTeamRequest) (*users.UserDTO, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team_name is required")
	}
	teamCode := strings.ToUpper(strings.TrimSpace(req.TeamCode))
	if teamCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team_code is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := createUser(ctx, tx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        req.Phone,
			Role:         enums.UserRoleAdmin,
		})
		if err != nil {
			return err
		}

		admin := &models.Admin{
			OwnerUserID: user.ID,
			TeamName:    teamName,
			TeamCode:    teamCode,
			Status:      enums.RoleStatusPending,
		}
		if err := admins.NewRepository(tx).Create(ctx, admin); err != nil {
			if db.IsUniqueViolation(err, "idx_admins_team_code") {
				return pkgerrors.New(pkgerrors.CodeConflict, "team code already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create team")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func createUser(ctx context.Context, tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error) {
	repo := users.NewRepository(tx)
	if _, err := repo.FindByEmail(ctx, dto.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	user, err := repo.Create(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return normalized, nil
}
