package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/api/middleware"
	"github.com/domiquerendona/domiq-backend/api/responses"
	"github.com/domiquerendona/domiq-backend/api/validators"
	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

// LinkFinder resolves wallet link rows for ownership checks.
type LinkFinder interface {
	FindCourierLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminCourier, error)
	FindAllyLinkByID(ctx context.Context, linkID uuid.UUID) (*models.AdminAlly, error)
}

// BalanceTeam returns the caller team's master balance.
func BalanceTeam(svc balances.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "balances service unavailable"))
			return
		}

		adminID, err := callerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := svc.GetBalance(r.Context(), balances.AccountRef{Type: enums.AccountAdmin, ID: adminID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"balance": amount})
	}
}

// BalanceTeamLedger pages the journal entries on the team master account.
func BalanceTeamLedger(svc balances.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "balances service unavailable"))
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

		entries, err := svc.ListEntriesByAccount(r.Context(), balances.AccountRef{Type: enums.AccountAdmin, ID: adminID}, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// BalanceLink returns one wallet link balance. The link owner, the team
// that holds it, and the platform may read it.
func BalanceLink(svc balances.Service, links LinkFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || links == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "balances service unavailable"))
			return
		}

		ref, err := resolveLinkRef(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := svc.GetBalance(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"balance": amount})
	}
}

// BalanceLinkLedger pages the journal entries on one wallet link.
func BalanceLinkLedger(svc balances.Service, links LinkFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || links == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "balances service unavailable"))
			return
		}

		ref, err := resolveLinkRef(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListEntriesByAccount(r.Context(), ref, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// resolveLinkRef loads the link named in the path, checks the caller may
// see it, and maps it to a balance account reference.
func resolveLinkRef(r *http.Request, links LinkFinder) (balances.AccountRef, error) {
	linkID, err := pathUUID(r, "linkID")
	if err != nil {
		return balances.AccountRef{}, err
	}

	accountType, err := enums.ParseAccountType(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type"))))
	if err != nil || accountType == enums.AccountAdmin {
		return balances.AccountRef{}, pkgerrors.New(pkgerrors.CodeValidation, "type must be COURIER_LINK or ALLY_LINK")
	}

	role := enums.UserRole(middleware.RoleFromContext(r.Context()))

	var adminID, ownerID uuid.UUID
	switch accountType {
	case enums.AccountCourierLink:
		link, err := links.FindCourierLinkByID(r.Context(), linkID)
		if err != nil {
			return balances.AccountRef{}, err
		}
		adminID, ownerID = link.AdminID, link.CourierID
	case enums.AccountAllyLink:
		link, err := links.FindAllyLinkByID(r.Context(), linkID)
		if err != nil {
			return balances.AccountRef{}, err
		}
		adminID, ownerID = link.AdminID, link.AllyID
	}

	if role != enums.UserRolePlatform {
		profileID, err := callerProfileID(r)
		if err != nil {
			return balances.AccountRef{}, err
		}
		if profileID != adminID && profileID != ownerID {
			return balances.AccountRef{}, pkgerrors.New(pkgerrors.CodeForbidden, "wallet not visible to caller")
		}
	}

	return balances.AccountRef{Type: accountType, ID: linkID}, nil
}
