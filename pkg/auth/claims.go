package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// ProfileID points to the admin, courier, or ally row matching Role;
// platform operators carry no profile.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	ProfileID *uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID      `json:"user_id"`
	Role      enums.UserRole `json:"role"`
	ProfileID *uuid.UUID     `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}
