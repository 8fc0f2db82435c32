package auth

import (
	"github.com/domiquerendona/domiq-backend/internal/users"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the expired access token plus its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is the rotated credential set returned by refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterCourierRequest onboards a rider identity plus courier profile.
type RegisterCourierRequest struct {
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required"`
	Phone     string     `json:"phone" validate:"required"`
	Residence *geo.Point `json:"residence,omitempty"`
}

// RegisterAllyRequest onboards a merchant identity plus ally profile.
type RegisterAllyRequest struct {
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required"`
	Phone         string  `json:"phone" validate:"required"`
	BusinessName  string  `json:"business_name" validate:"required"`
	BusinessPhone *string `json:"business_phone,omitempty"`
}

// RegisterTeamRequest onboards a team owner identity plus its team.
type RegisterTeamRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required"`
	Phone     *string `json:"phone,omitempty"`
	TeamName  string  `json:"team_name" validate:"required"`
	TeamCode  string  `json:"team_code" validate:"required"`
}
