package auth

import (
	"context"
	"testing"

	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

func newRegisterService(t *testing.T) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             &db.Client{},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("NewRegisterService: %v", err)
	}
	return svc
}

func TestRegisterCourierValidation(t *testing.T) {
	svc := newRegisterService(t)

	cases := []struct {
		name string
		req  RegisterCourierRequest
	}{
		{
			name: "missing email",
			req:  RegisterCourierRequest{FirstName: "A", LastName: "B", Password: "pw", Phone: "3000000000"},
		},
		{
			name: "missing phone",
			req:  RegisterCourierRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "pw"},
		},
		{
			name: "latitude out of range",
			req: RegisterCourierRequest{
				FirstName: "A", LastName: "B", Email: "a@b.com", Password: "pw", Phone: "3000000000",
				Residence: &geo.Point{Lat: 95, Lng: 0},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterCourier(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterAllyValidation(t *testing.T) {
	svc := newRegisterService(t)

	cases := []struct {
		name string
		req  RegisterAllyRequest
	}{
		{
			name: "missing email",
			req:  RegisterAllyRequest{FirstName: "A", LastName: "B", Password: "pw", Phone: "3000000000", BusinessName: "Cafe"},
		},
		{
			name: "missing business name",
			req:  RegisterAllyRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "pw", Phone: "3000000000"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterAlly(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterTeamValidation(t *testing.T) {
	svc := newRegisterService(t)

	cases := []struct {
		name string
		req  RegisterTeamRequest
	}{
		{
			name: "missing team name",
			req:  RegisterTeamRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "pw", TeamCode: "CENTRO-01"},
		},
		{
			name: "missing team code",
			req:  RegisterTeamRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "pw", TeamName: "Centro"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterTeam(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
