package balances

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
)

type fakeRepository struct {
	balances map[AccountRef]int64
	entries  []models.LedgerEntry
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{balances: map[AccountRef]int64{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Debit(ctx context.Context, ref AccountRef, amount int64) (bool, error) {
	balance, ok := f.balances[ref]
	if !ok || balance < amount {
		return false, nil
	}
	f.balances[ref] = balance - amount
	return true, nil
}

func (f *fakeRepository) Credit(ctx context.Context, ref AccountRef, amount int64) (bool, error) {
	if _, ok := f.balances[ref]; !ok {
		return false, nil
	}
	f.balances[ref] += amount
	return true, nil
}

func (f *fakeRepository) GetBalance(ctx context.Context, ref AccountRef) (int64, error) {
	balance, ok := f.balances[ref]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return balance, nil
}

func (f *fakeRepository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRepository) ListEntriesByRef(ctx context.Context, refType enums.LedgerRefType, refID uuid.UUID) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range f.entries {
		if e.RefType == refType && e.RefID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListEntriesByAccount(ctx context.Context, ref AccountRef, limit int) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range f.entries {
		if e.AccountType == ref.Type && e.AccountID == ref.ID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestPostTransfer_MovesMoneyAndJournalsBothSides(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	admin := AccountRef{Type: enums.AccountAdmin, ID: uuid.New()}
	link := AccountRef{Type: enums.AccountCourierLink, ID: uuid.New()}
	repo.balances[admin] = 20000
	repo.balances[link] = 0

	refID := uuid.New()
	err = svc.PostTransfer(context.Background(), nil, TransferInput{
		From:    &admin,
		To:      link,
		Amount:  12000,
		RefType: enums.LedgerRefRechargeRequest,
		RefID:   refID,
	})
	if err != nil {
		t.Fatalf("PostTransfer error: %v", err)
	}

	if repo.balances[admin] != 8000 {
		t.Fatalf("expected admin balance 8000, got %d", repo.balances[admin])
	}
	if repo.balances[link] != 12000 {
		t.Fatalf("expected link balance 12000, got %d", repo.balances[link])
	}

	entries, _ := repo.ListEntriesByRef(context.Background(), enums.LedgerRefRechargeRequest, refID)
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 ledger entries, got %d", len(entries))
	}
	if entries[0].Amount != -12000 || entries[0].AccountID != admin.ID {
		t.Fatalf("unexpected debit entry: %+v", entries[0])
	}
	if entries[1].Amount != 12000 || entries[1].AccountID != link.ID {
		t.Fatalf("unexpected credit entry: %+v", entries[1])
	}
	if entries[0].Amount+entries[1].Amount != 0 {
		t.Fatalf("transfer entries must sum to zero")
	}
}

func TestPostTransfer_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	admin := AccountRef{Type: enums.AccountAdmin, ID: uuid.New()}
	link := AccountRef{Type: enums.AccountAllyLink, ID: uuid.New()}
	repo.balances[admin] = 500
	repo.balances[link] = 0

	err := svc.PostTransfer(context.Background(), nil, TransferInput{
		From:    &admin,
		To:      link,
		Amount:  12000,
		RefType: enums.LedgerRefRechargeRequest,
		RefID:   uuid.New(),
	})

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if repo.balances[admin] != 500 || repo.balances[link] != 0 {
		t.Fatalf("balances must be untouched on failure")
	}
	if len(repo.entries) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(repo.entries))
	}
}

func TestPostTransfer_MintCreditWritesSingleEntry(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	admin := AccountRef{Type: enums.AccountAdmin, ID: uuid.New()}
	repo.balances[admin] = 0

	refID := uuid.New()
	err := svc.PostTransfer(context.Background(), nil, TransferInput{
		To:      admin,
		Amount:  5000,
		RefType: enums.LedgerRefAdjustment,
		RefID:   refID,
	})
	if err != nil {
		t.Fatalf("PostTransfer error: %v", err)
	}

	if repo.balances[admin] != 5000 {
		t.Fatalf("expected admin balance 5000, got %d", repo.balances[admin])
	}
	if len(repo.entries) != 1 || repo.entries[0].Amount != 5000 {
		t.Fatalf("expected a single credit entry, got %+v", repo.entries)
	}
}

func TestPostTransfer_Validation(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	admin := AccountRef{Type: enums.AccountAdmin, ID: uuid.New()}
	link := AccountRef{Type: enums.AccountCourierLink, ID: uuid.New()}

	tests := []struct {
		name  string
		input TransferInput
	}{
		{
			name:  "zero amount",
			input: TransferInput{From: &admin, To: link, RefType: enums.LedgerRefOrder, RefID: uuid.New()},
		},
		{
			name:  "negative amount",
			input: TransferInput{From: &admin, To: link, Amount: -10, RefType: enums.LedgerRefOrder, RefID: uuid.New()},
		},
		{
			name:  "missing credit account",
			input: TransferInput{From: &admin, Amount: 10, RefType: enums.LedgerRefOrder, RefID: uuid.New()},
		},
		{
			name:  "missing ref",
			input: TransferInput{From: &admin, To: link, Amount: 10},
		},
		{
			name:  "invalid debit account",
			input: TransferInput{From: &AccountRef{}, To: link, Amount: 10, RefType: enums.LedgerRefOrder, RefID: uuid.New()},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.PostTransfer(context.Background(), nil, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetBalance_UnknownAccount(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	_, err := svc.GetBalance(context.Background(), AccountRef{Type: enums.AccountAdmin, ID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
