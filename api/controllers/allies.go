package controllers

import (
	"net/http"

	"github.com/domiquerendona/domiq-backend/api/responses"
	"github.com/domiquerendona/domiq-backend/api/validators"
	"github.com/domiquerendona/domiq-backend/internal/allies"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

type allyLocationBody struct {
	Label       string    `json:"label" validate:"required"`
	Point       geo.Point `json:"point"`
	MakeDefault bool      `json:"make_default"`
}

// AllyMe returns the caller's ally profile.
func AllyMe(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ally, err := svc.Get(r.Context(), allyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ally)
	}
}

// AllyAddLocation saves a pickup point on the caller's profile.
func AllyAddLocation(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body allyLocationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.AddLocation(r.Context(), allies.AddLocationInput{
			AllyID:      allyID,
			Label:       body.Label,
			Point:       body.Point,
			MakeDefault: body.MakeDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, location)
	}
}

// AllyListLocations returns the caller's saved pickup points.
func AllyListLocations(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locations, err := svc.ListLocations(r.Context(), allyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, locations)
	}
}

// AllySetDefaultLocation promotes one saved point to the default pickup.
func AllySetDefaultLocation(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := pathUUID(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetDefaultLocation(r.Context(), allyID, locationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "default_set"})
	}
}

// AllyRemoveLocation deletes a saved pickup point.
func AllyRemoveLocation(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := pathUUID(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveLocation(r.Context(), allyID, locationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// AllyBlockCourier keeps a courier out of the caller's future offer queues.
func AllyBlockCourier(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courierID, err := pathUUID(r, "courierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.BlockCourier(r.Context(), allyID, courierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "blocked"})
	}
}

// AllyUnblockCourier lifts a block.
func AllyUnblockCourier(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courierID, err := pathUUID(r, "courierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UnblockCourier(r.Context(), allyID, courierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unblocked"})
	}
}

// AllyListBlockedCouriers returns the caller's blocklist.
func AllyListBlockedCouriers(svc allies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allies service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		blocks, err := svc.ListBlockedCouriers(r.Context(), allyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, blocks)
	}
}
