package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/api/middleware"
	"github.com/domiquerendona/domiq-backend/api/responses"
	"github.com/domiquerendona/domiq-backend/api/validators"
	"github.com/domiquerendona/domiq-backend/internal/recharges"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

type createRechargeBody struct {
	AdminID  uuid.UUID `json:"admin_id" validate:"required"`
	Amount   int64     `json:"amount" validate:"required,gt=0"`
	Method   string    `json:"method" validate:"required"`
	Note     *string   `json:"note,omitempty"`
	ProofRef *string   `json:"proof_ref,omitempty"`
}

type rejectRechargeBody struct {
	Reason *string `json:"reason,omitempty"`
}

// RechargeCreate files a PENDING request to top up the caller's wallet
// on the named team. The target follows from the caller's role.
func RechargeCreate(svc recharges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recharges service unavailable"))
			return
		}

		userID, err := callerUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profileID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var targetType enums.RechargeTargetType
		switch enums.UserRole(middleware.RoleFromContext(r.Context())) {
		case enums.UserRoleCourier:
			targetType = enums.RechargeTargetCourier
		case enums.UserRoleAlly:
			targetType = enums.RechargeTargetAlly
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
			return
		}

		var body createRechargeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Create(r.Context(), recharges.CreateInput{
			AdminID:     body.AdminID,
			TargetType:  targetType,
			TargetID:    profileID,
			Amount:      body.Amount,
			RequestedBy: userID,
			Method:      body.Method,
			Note:        body.Note,
			ProofRef:    body.ProofRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// RechargeApprove moves the money and closes the request.
func RechargeApprove(svc recharges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recharges service unavailable"))
			return
		}

		adminID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Approve(r.Context(), recharges.DecideInput{
			RequestID:      requestID,
			DeciderAdminID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RechargeReject closes the request without moving money.
func RechargeReject(svc recharges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recharges service unavailable"))
			return
		}

		adminID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectRechargeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), recharges.DecideInput{
			RequestID:      requestID,
			DeciderAdminID: adminID,
			RejectReason:   body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RechargeGet returns one request, visible to the deciding team, the
// requester, or the platform.
func RechargeGet(svc recharges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recharges service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		visible := role == enums.UserRolePlatform
		if !visible {
			if userID, err := callerUserID(r); err == nil && request.RequestedBy == userID {
				visible = true
			}
		}
		if !visible && role == enums.UserRoleAdmin {
			if adminID, err := callerProfileID(r); err == nil && request.AdminID == adminID {
				visible = true
			}
		}
		if !visible {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "request not visible to caller"))
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RechargeList pages the caller team's recharge requests.
func RechargeList(svc recharges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recharges service unavailable"))
			return
		}

		adminID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := recharges.ListParams{AdminID: adminID, Limit: limit}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseRechargeStatus(strings.ToUpper(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
			cursor, err := pagination.ParseCursor(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
				return
			}
			params.Cursor = cursor
		}

		list, next, err := svc.ListByAdmin(r.Context(), params)
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
