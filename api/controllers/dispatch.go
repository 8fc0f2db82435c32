package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/api/middleware"
	"github.com/domiquerendona/domiq-backend/api/responses"
	"github.com/domiquerendona/domiq-backend/internal/dispatch"
	"github.com/domiquerendona/domiq-backend/internal/orders"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

// DispatchPublish opens the offer cycle for a pending order. Only the
// order's ally or its team owner may publish it.
func DispatchPublish(svc dispatch.Service, orderSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || orderSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := authorizeOrderOwner(r, orderSvc, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Publish(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DispatchAccept lets the offered courier take the order.
func DispatchAccept(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, courierID, err := dispatchIdentifiers(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Accept(r.Context(), orderID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DispatchReject declines the caller's active offer and moves the queue on.
func DispatchReject(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, courierID, err := dispatchIdentifiers(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reject(r.Context(), orderID, courierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

// DispatchRelease lets the assigned courier hand an accepted order back.
func DispatchRelease(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, courierID, err := dispatchIdentifiers(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Release(r.Context(), orderID, courierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "released"})
	}
}

// DispatchPickup marks the assigned order as collected from the ally.
func DispatchPickup(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, courierID, err := dispatchIdentifiers(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmPickup(r.Context(), orderID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DispatchDelivered closes the order and settles the delivery fees.
func DispatchDelivered(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, courierID, err := dispatchIdentifiers(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmDelivered(r.Context(), orderID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DispatchCancel withdraws an order before delivery. The actor stamped
// on the cancellation follows the caller's role.
func DispatchCancel(svc dispatch.Service, orderSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || orderSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := authorizeOrderOwner(r, orderSvc, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := enums.CancelActorAdmin
		if enums.UserRole(middleware.RoleFromContext(r.Context())) == enums.UserRoleAlly {
			actor = enums.CancelActorAlly
		}

		if err := svc.Cancel(r.Context(), orderID, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// DispatchQueue shows the order's offer history in queue order.
func DispatchQueue(svc dispatch.Service, orderSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || orderSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := authorizeOrderOwner(r, orderSvc, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offers, err := svc.Queue(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers)
	}
}

// dispatchIdentifiers resolves the order from the path and the courier
// from the caller's profile claim.
func dispatchIdentifiers(r *http.Request) (orderID, courierID uuid.UUID, err error) {
	orderID, err = pathUUID(r, "orderID")
	if err != nil {
		return
	}
	courierID, err = callerProfileID(r)
	return
}

// authorizeOrderOwner loads the order and checks the caller controls it.
// Platform operators pass unconditionally.
func authorizeOrderOwner(r *http.Request, orderSvc orders.Service, orderID uuid.UUID) error {
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if role == enums.UserRolePlatform {
		return nil
	}

	order, err := orderSvc.Get(r.Context(), orderID)
	if err != nil {
		return err
	}

	profileID, err := callerProfileID(r)
	if err != nil {
		return err
	}
	switch role {
	case enums.UserRoleAlly:
		if order.AllyID == profileID {
			return nil
		}
	case enums.UserRoleAdmin:
		if order.AdminID == profileID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order not controlled by caller")
}
