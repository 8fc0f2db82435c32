package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/domiquerendona/domiq-backend/pkg/auth"
	"github.com/domiquerendona/domiq-backend/pkg/auth/session"
	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "domiq",
	ExpirationMinutes: 30,
}

func TestServiceLoginCourierCarriesProfileClaim(t *testing.T) {
	password := "courier-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "rider@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Rider",
		LastName:     "One",
		Role:         enums.UserRoleCourier,
		IsActive:     true,
	}
	courierID := uuid.New()

	svc, _ := buildTestService(t, user, &stubProfileDirectory{
		couriers: map[uuid.UUID]uuid.UUID{user.ID: courierID},
	})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleCourier {
		t.Fatalf("expected courier role claim, got %s", claims.Role)
	}
	if claims.ProfileID == nil || *claims.ProfileID != courierID {
		t.Fatalf("expected courier profile claim")
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be stamped")
	}
}

func TestServiceLoginPlatformHasNoProfile(t *testing.T) {
	password := "platform-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ops@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Ops",
		LastName:     "Operator",
		Role:         enums.UserRolePlatform,
		IsActive:     true,
	}

	svc, _ := buildTestService(t, user, &stubProfileDirectory{})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ProfileID != nil {
		t.Fatalf("expected no profile claim for platform operator")
	}
}

func TestServiceLoginMissingProfileIsUnauthorized(t *testing.T) {
	password := "orphan"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "orphan@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleAlly,
		IsActive:     true,
	}

	svc, _ := buildTestService(t, user, &stubProfileDirectory{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err == nil {
		t.Fatalf("expected unauthorized without profile")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginInactiveUserRejected(t *testing.T) {
	password := "inactive"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "inactive@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRolePlatform,
		IsActive:     false,
	}

	svc, _ := buildTestService(t, user, &stubProfileDirectory{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "rider@example.com",
		PasswordHash: mustHashPassword(t, "right"),
		Role:         enums.UserRolePlatform,
		IsActive:     true,
	}

	svc, _ := buildTestService(t, user, &stubProfileDirectory{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}
	adminID := uuid.New()
	payload := pkgAuth.AccessTokenPayload{
		UserID:    user.ID,
		Role:      user.Role,
		ProfileID: &adminID,
		JTI:       "old-access-id",
	}
	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	svc, sessions := buildTestService(t, user, &stubProfileDirectory{})

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-token",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sessions.rotatedFrom != "old-access-id" {
		t.Fatalf("expected rotation from old jti, got %q", sessions.rotatedFrom)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ProfileID == nil || *claims.ProfileID != adminID {
		t.Fatalf("profile claim lost on refresh")
	}
	if claims.ID == "old-access-id" {
		t.Fatalf("expected fresh jti after rotation")
	}
}

func TestServiceRefreshInvalidTokenRejected(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}
	svc, sessions := buildTestService(t, user, &stubProfileDirectory{})
	sessions.rotateErr = session.ErrInvalidRefreshToken

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stolen",
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.UserRolePlatform}
	svc, sessions := buildTestService(t, user, &stubProfileDirectory{})

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   enums.UserRolePlatform,
		JTI:    "live-access-id",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if err := svc.Logout(context.Background(), accessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revoked != "live-access-id" {
		t.Fatalf("expected session revoked, got %q", sessions.revoked)
	}
}

func buildTestService(t *testing.T, user *models.User, profiles *stubProfileDirectory) (Service, *stubSessionManager) {
	t.Helper()
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user},
		Profiles:       profiles,
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessionMgr
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubProfileDirectory struct {
	couriers map[uuid.UUID]uuid.UUID
	allies   map[uuid.UUID]uuid.UUID
	admins   map[uuid.UUID]uuid.UUID
}

func (s *stubProfileDirectory) CourierIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return lookupProfile(s.couriers, userID)
}

func (s *stubProfileDirectory) AllyIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return lookupProfile(s.allies, userID)
}

func (s *stubProfileDirectory) AdminIDByOwner(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return lookupProfile(s.admins, userID)
}

func lookupProfile(m map[uuid.UUID]uuid.UUID, userID uuid.UUID) (uuid.UUID, error) {
	if id, ok := m[userID]; ok {
		return id, nil
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	refreshToken string
	rotatedFrom  string
	rotateErr    error
	revoked      string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.rotatedFrom = oldAccessID
	return session.NewAccessID(), "rotated-refresh-token", nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
