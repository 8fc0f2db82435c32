package controllers

import (
	"net/http"

	"github.com/domiquerendona/domiq-backend/api/responses"
	"github.com/domiquerendona/domiq-backend/api/validators"
	"github.com/domiquerendona/domiq-backend/internal/couriers"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

type courierOnlineBody struct {
	Online bool `json:"online"`
}

type courierCashBody struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

// CourierMe returns the caller's courier profile.
func CourierMe(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "couriers service unavailable"))
			return
		}

		courierID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.Get(r.Context(), courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, courier)
	}
}

// CourierSetOnline toggles the caller's availability for offers.
func CourierSetOnline(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "couriers service unavailable"))
			return
		}

		courierID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body courierOnlineBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetOnline(r.Context(), courierID, body.Online); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"online": body.Online})
	}
}

// CourierDeclareCash records how much cash the caller is carrying.
func CourierDeclareCash(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "couriers service unavailable"))
			return
		}

		courierID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body courierCashBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeclareCash(r.Context(), courierID, body.Amount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"declared_cash": body.Amount})
	}
}

// CourierUpdateResidence moves the caller's fallback ranking point.
func CourierUpdateResidence(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "couriers service unavailable"))
			return
		}

		courierID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body geo.Point
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateResidence(r.Context(), courierID, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, body)
	}
}

// CourierReportLocation ingests a live GPS report from the caller.
func CourierReportLocation(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "couriers service unavailable"))
			return
		}

		courierID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body geo.Point
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReportLocation(r.Context(), courierID, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reported"})
	}
}
