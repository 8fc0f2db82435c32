package balances

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
)

// Service moves money between balance accounts and keeps the ledger
// journal consistent with every mutation.
type Service interface {
	// PostTransfer debits From and credits To atomically within the
	// given transaction, appending one ledger entry per side. A nil From
	// mints the credited amount without debiting anyone.
	PostTransfer(ctx context.Context, tx *gorm.DB, input TransferInput) error
	GetBalance(ctx context.Context, ref AccountRef) (int64, error)
	ListEntriesByRef(ctx context.Context, refType enums.LedgerRefType, refID uuid.UUID) ([]models.LedgerEntry, error)
	ListEntriesByAccount(ctx context.Context, ref AccountRef, limit int) ([]models.LedgerEntry, error)
}

type service struct {
	repo Repository
}

// TransferInput describes a single balance movement. Amount is positive
// minor units; RefType and RefID key the journal rows back to the
// business event that caused them.
type TransferInput struct {
	From    *AccountRef
	To      AccountRef
	Amount  int64
	RefType enums.LedgerRefType
	RefID   uuid.UUID
	Memo    *string
}

// NewService wires a balances service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("balances repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) PostTransfer(ctx context.Context, tx *gorm.DB, input TransferInput) error {
	if input.Amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer amount must be positive")
	}
	if !input.To.Type.IsValid() || input.To.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit account is required")
	}
	if input.From != nil && (!input.From.Type.IsValid() || input.From.ID == uuid.Nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit account is invalid")
	}
	if !input.RefType.IsValid() || input.RefID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ledger reference is required")
	}

	repo := s.repo.WithTx(tx)

	if input.From != nil {
		debited, err := repo.Debit(ctx, *input.From, input.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting account")
		}
		if !debited {
			if _, lookupErr := repo.GetBalance(ctx, *input.From); lookupErr != nil {
				if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "debit account not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, lookupErr, "checking debit account")
			}
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "debit account balance too low")
		}
		if err := repo.CreateEntry(ctx, &models.LedgerEntry{
			AccountType: input.From.Type,
			AccountID:   input.From.ID,
			Amount:      -input.Amount,
			RefType:     input.RefType,
			RefID:       input.RefID,
			Memo:        input.Memo,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording debit entry")
		}
	}

	credited, err := repo.Credit(ctx, input.To, input.Amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting account")
	}
	if !credited {
		return pkgerrors.New(pkgerrors.CodeNotFound, "credit account not found")
	}
	if err := repo.CreateEntry(ctx, &models.LedgerEntry{
		AccountType: input.To.Type,
		AccountID:   input.To.ID,
		Amount:      input.Amount,
		RefType:     input.RefType,
		RefID:       input.RefID,
		Memo:        input.Memo,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording credit entry")
	}
	return nil
}

func (s *service) GetBalance(ctx context.Context, ref AccountRef) (int64, error) {
	if !ref.Type.IsValid() || ref.ID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "account ref is required")
	}
	balance, err := s.repo.GetBalance(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading balance")
	}
	return balance, nil
}

func (s *service) ListEntriesByRef(ctx context.Context, refType enums.LedgerRefType, refID uuid.UUID) ([]models.LedgerEntry, error) {
	if !refType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger ref type %q", refType))
	}
	if refID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger ref id is required")
	}
	return s.repo.ListEntriesByRef(ctx, refType, refID)
}

func (s *service) ListEntriesByAccount(ctx context.Context, ref AccountRef, limit int) ([]models.LedgerEntry, error) {
	if !ref.Type.IsValid() || ref.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account ref is required")
	}
	return s.repo.ListEntriesByAccount(ctx, ref, limit)
}
