package recharges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// teamDirectory resolves admins and the wallet links recharges credit.
type teamDirectory interface {
	FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	FindCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error)
	FindAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error)
}

// DecisionNotifier tells interested parties that a request was decided.
// Failures are the notifier's problem; decisions never roll back on them.
type DecisionNotifier interface {
	RechargeDecided(ctx context.Context, request *models.RechargeRequest)
}

// Service runs the recharge request workflow: create as PENDING, then
// decide exactly once. Approval moves money; rejection never does.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.RechargeRequest, error)
	Approve(ctx context.Context, input DecideInput) (*models.RechargeRequest, error)
	Reject(ctx context.Context, input DecideInput) (*models.RechargeRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RechargeRequest, error)
	ListByAdmin(ctx context.Context, params ListParams) ([]models.RechargeRequest, *pagination.Cursor, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	balances  balances.Service
	directory teamDirectory
	notifier  DecisionNotifier
	now       func() time.Time
}

// CreateInput captures a new recharge request.
type CreateInput struct {
	AdminID     uuid.UUID
	TargetType  enums.RechargeTargetType
	TargetID    uuid.UUID
	Amount      int64
	RequestedBy uuid.UUID
	Method      string
	Note        *string
	ProofRef    *string
}

// DecideInput identifies the request and the admin deciding it.
type DecideInput struct {
	RequestID      uuid.UUID
	DeciderAdminID uuid.UUID
	RejectReason   *string
}

// NewService wires the recharge workflow with its dependencies. The
// notifier may be nil.
func NewService(repo Repository, tx txRunner, balanceSvc balances.Service, directory teamDirectory, notifier DecisionNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recharges repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if balanceSvc == nil {
		return nil, fmt.Errorf("balances service required")
	}
	if directory == nil {
		return nil, fmt.Errorf("team directory required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		balances:  balanceSvc,
		directory: directory,
		notifier:  notifier,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.RechargeRequest, error) {
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if !input.TargetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target type %q", input.TargetType))
	}
	if input.TargetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.RequestedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester is required")
	}

	if _, err := s.resolveTargetAccount(ctx, input.AdminID, input.TargetType, input.TargetID); err != nil {
		return nil, err
	}

	request := &models.RechargeRequest{
		AdminID:     input.AdminID,
		TargetType:  input.TargetType,
		TargetID:    input.TargetID,
		Amount:      input.Amount,
		Status:      enums.RechargeStatusPending,
		Method:      input.Method,
		Note:        input.Note,
		ProofRef:    input.ProofRef,
		RequestedBy: input.RequestedBy,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating recharge request")
	}
	return request, nil
}

func (s *service) Approve(ctx context.Context, input DecideInput) (*models.RechargeRequest, error) {
	request, err := s.authorizeDecision(ctx, input)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTargetAccount(ctx, request.AdminID, request.TargetType, request.TargetID)
	if err != nil {
		return nil, err
	}

	decidedAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		won, err := txRepo.MarkDecided(ctx, request.ID, Decision{
			Status:    enums.RechargeStatusApproved,
			DecidedBy: input.DeciderAdminID,
			DecidedAt: decidedAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking recharge approved")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeAlreadyDecided, "recharge request already decided")
		}

		admin := balances.AccountRef{Type: enums.AccountAdmin, ID: request.AdminID}
		return s.balances.PostTransfer(ctx, tx, balances.TransferInput{
			From:    &admin,
			To:      target,
			Amount:  request.Amount,
			RefType: enums.LedgerRefRechargeRequest,
			RefID:   request.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	request.Status = enums.RechargeStatusApproved
	request.DecidedBy = &input.DeciderAdminID
	request.DecidedAt = &decidedAt
	s.notifyDecided(ctx, request)
	return request, nil
}

func (s *service) Reject(ctx context.Context, input DecideInput) (*models.RechargeRequest, error) {
	request, err := s.authorizeDecision(ctx, input)
	if err != nil {
		return nil, err
	}

	decidedAt := s.now().UTC()
	won, err := s.repo.MarkDecided(ctx, request.ID, Decision{
		Status:       enums.RechargeStatusRejected,
		DecidedBy:    input.DeciderAdminID,
		DecidedAt:    decidedAt,
		RejectReason: input.RejectReason,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking recharge rejected")
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyDecided, "recharge request already decided")
	}

	request.Status = enums.RechargeStatusRejected
	request.DecidedBy = &input.DeciderAdminID
	request.DecidedAt = &decidedAt
	request.RejectReason = input.RejectReason
	s.notifyDecided(ctx, request)
	return request, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RechargeRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recharge request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading recharge request")
	}
	return request, nil
}

func (s *service) ListByAdmin(ctx context.Context, params ListParams) ([]models.RechargeRequest, *pagination.Cursor, error) {
	if params.AdminID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter %q", *params.Status))
	}
	return s.repo.ListByAdmin(ctx, params)
}

func (s *service) authorizeDecision(ctx context.Context, input DecideInput) (*models.RechargeRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	if input.DeciderAdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decider admin id is required")
	}

	request, err := s.Get(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if request.AdminID != input.DeciderAdminID {
		decider, err := s.directory.FindAdmin(ctx, input.DeciderAdminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "decider is not allowed to decide this request")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading decider admin")
		}
		if !decider.IsPlatform {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "decider is not allowed to decide this request")
		}
	}
	return request, nil
}

func (s *service) resolveTargetAccount(ctx context.Context, adminID uuid.UUID, targetType enums.RechargeTargetType, targetID uuid.UUID) (balances.AccountRef, error) {
	switch targetType {
	case enums.RechargeTargetCourier:
		link, err := s.directory.FindCourierLink(ctx, adminID, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return balances.AccountRef{}, pkgerrors.New(pkgerrors.CodeNotFound, "courier is not linked to this team")
			}
			return balances.AccountRef{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving courier link")
		}
		return balances.AccountRef{Type: enums.AccountCourierLink, ID: link.ID}, nil
	default:
		link, err := s.directory.FindAllyLink(ctx, adminID, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return balances.AccountRef{}, pkgerrors.New(pkgerrors.CodeNotFound, "ally is not linked to this team")
			}
			return balances.AccountRef{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving ally link")
		}
		return balances.AccountRef{Type: enums.AccountAllyLink, ID: link.ID}, nil
	}
}

func (s *service) notifyDecided(ctx context.Context, request *models.RechargeRequest) {
	if s.notifier == nil {
		return
	}
	s.notifier.RechargeDecided(ctx, request)
}
