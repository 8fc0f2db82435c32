package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/api/middleware"
	"github.com/domiquerendona/domiq-backend/api/responses"
	"github.com/domiquerendona/domiq-backend/api/validators"
	"github.com/domiquerendona/domiq-backend/internal/orders"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

type createOrderBody struct {
	AdminID            uuid.UUID  `json:"admin_id" validate:"required"`
	Pickup             *geo.Point `json:"pickup,omitempty"`
	PickupLocationID   *uuid.UUID `json:"pickup_location_id,omitempty"`
	DropoffAddress     string     `json:"dropoff_address" validate:"required"`
	Dropoff            *geo.Point `json:"dropoff,omitempty"`
	RequiresCash       bool       `json:"requires_cash"`
	CashRequiredAmount int64      `json:"cash_required_amount" validate:"gte=0"`
	Notes              *string    `json:"notes,omitempty"`
}

// OrderCreate lets an ally file a delivery order under one of its teams.
// The order starts PENDING; publishing it is a separate dispatch call.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		allyID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			AllyID:             allyID,
			AdminID:            body.AdminID,
			Pickup:             body.Pickup,
			PickupLocationID:   body.PickupLocationID,
			DropoffAddress:     body.DropoffAddress,
			Dropoff:            body.Dropoff,
			RequiresCash:       body.RequiresCash,
			CashRequiredAmount: body.CashRequiredAmount,
			Notes:              body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet returns a single order, visible only to its ally, its team
// owner, the assigned courier, or the platform.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := authorizeOrderAccess(r, order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderListMine pages the caller's orders: the ally view or the courier
// view depending on the authenticated role.
func OrderListMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		profileID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := buildOrderListParams(r, profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var (
			list []models.Order
			next *pagination.Cursor
		)
		switch enums.UserRole(middleware.RoleFromContext(r.Context())) {
		case enums.UserRoleAlly:
			list, next, err = svc.ListByAlly(r.Context(), params)
		case enums.UserRoleCourier:
			list, next, err = svc.ListByCourier(r.Context(), params)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{"items": list}
		if next != nil {
			payload["cursor"] = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, payload)
	}
}

func buildOrderListParams(r *http.Request, scope uuid.UUID) (orders.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return orders.ListParams{}, err
	}

	params := orders.ListParams{Scope: scope, Limit: limit}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(strings.ToUpper(raw))
		if err != nil {
			return orders.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		cursor, err := pagination.ParseCursor(raw)
		if err != nil {
			return orders.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	return params, nil
}

// authorizeOrderAccess enforces read visibility per role.
func authorizeOrderAccess(r *http.Request, order *models.Order) error {
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if role == enums.UserRolePlatform {
		return nil
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
	case enums.UserRoleCourier:
		if order.CourierID != nil && *order.CourierID == profileID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order not visible to caller")
}
