package recharges

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	requests map[uuid.UUID]*models.RechargeRequest
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{requests: map[uuid.UUID]*models.RechargeRequest{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, request *models.RechargeRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	request.CreatedAt = time.Now()
	f.requests[request.ID] = request
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.RechargeRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *request
	return &clone, nil
}

func (f *fakeRepository) MarkDecided(ctx context.Context, id uuid.UUID, decision Decision) (bool, error) {
	request, ok := f.requests[id]
	if !ok || request.Status != enums.RechargeStatusPending {
		return false, nil
	}
	request.Status = decision.Status
	request.DecidedBy = &decision.DecidedBy
	request.DecidedAt = &decision.DecidedAt
	request.RejectReason = decision.RejectReason
	return true, nil
}

func (f *fakeRepository) ListByAdmin(ctx context.Context, params ListParams) ([]models.RechargeRequest, *pagination.Cursor, error) {
	var out []models.RechargeRequest
	for _, request := range f.requests {
		if request.AdminID != params.AdminID {
			continue
		}
		if params.Status != nil && request.Status != *params.Status {
			continue
		}
		out = append(out, *request)
	}
	return out, nil, nil
}

type fakeBalances struct {
	balances map[balances.AccountRef]int64
	entries  []models.LedgerEntry
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{balances: map[balances.AccountRef]int64{}}
}

func (f *fakeBalances) PostTransfer(ctx context.Context, tx *gorm.DB, input balances.TransferInput) error {
	if input.From != nil {
		if f.balances[*input.From] < input.Amount {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "debit account balance too low")
		}
		f.balances[*input.From] -= input.Amount
		f.entries = append(f.entries, models.LedgerEntry{
			AccountType: input.From.Type, AccountID: input.From.ID,
			Amount: -input.Amount, RefType: input.RefType, RefID: input.RefID,
		})
	}
	f.balances[input.To] += input.Amount
	f.entries = append(f.entries, models.LedgerEntry{
		AccountType: input.To.Type, AccountID: input.To.ID,
		Amount: input.Amount, RefType: input.RefType, RefID: input.RefID,
	})
	return nil
}

func (f *fakeBalances) GetBalance(ctx context.Context, ref balances.AccountRef) (int64, error) {
	return f.balances[ref], nil
}

func (f *fakeBalances) ListEntriesByRef(ctx context.Context, refType enums.LedgerRefType, refID uuid.UUID) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range f.entries {
		if e.RefType == refType && e.RefID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBalances) ListEntriesByAccount(ctx context.Context, ref balances.AccountRef, limit int) ([]models.LedgerEntry, error) {
	return nil, nil
}

type fakeDirectory struct {
	admins       map[uuid.UUID]*models.Admin
	courierLinks map[uuid.UUID]*models.AdminCourier
	allyLinks    map[uuid.UUID]*models.AdminAlly
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		admins:       map[uuid.UUID]*models.Admin{},
		courierLinks: map[uuid.UUID]*models.AdminCourier{},
		allyLinks:    map[uuid.UUID]*models.AdminAlly{},
	}
}

func (f *fakeDirectory) FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (f *fakeDirectory) FindCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error) {
	for _, link := range f.courierLinks {
		if link.AdminID == adminID && link.CourierID == courierID {
			return link, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDirectory) FindAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error) {
	for _, link := range f.allyLinks {
		if link.AdminID == adminID && link.AllyID == allyID {
			return link, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type rechargeFixture struct {
	svc       Service
	repo      *fakeRepository
	balances  *fakeBalances
	adminID   uuid.UUID
	courierID uuid.UUID
	linkID    uuid.UUID
}

func newRechargeFixture(t *testing.T) *rechargeFixture {
	t.Helper()

	repo := newFakeRepository()
	balanceSvc := newFakeBalances()
	directory := newFakeDirectory()

	adminID := uuid.New()
	courierID := uuid.New()
	linkID := uuid.New()

	directory.admins[adminID] = &models.Admin{ID: adminID, Status: enums.RoleStatusApproved}
	directory.courierLinks[linkID] = &models.AdminCourier{ID: linkID, AdminID: adminID, CourierID: courierID}

	balanceSvc.balances[balances.AccountRef{Type: enums.AccountAdmin, ID: adminID}] = 20000
	balanceSvc.balances[balances.AccountRef{Type: enums.AccountCourierLink, ID: linkID}] = 0

	svc, err := NewService(repo, fakeTxRunner{}, balanceSvc, directory, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	return &rechargeFixture{
		svc:       svc,
		repo:      repo,
		balances:  balanceSvc,
		adminID:   adminID,
		courierID: courierID,
		linkID:    linkID,
	}
}

func (fx *rechargeFixture) createPending(t *testing.T, amount int64) *models.RechargeRequest {
	t.Helper()
	request, err := fx.svc.Create(context.Background(), CreateInput{
		AdminID:     fx.adminID,
		TargetType:  enums.RechargeTargetCourier,
		TargetID:    fx.courierID,
		Amount:      amount,
		RequestedBy: uuid.New(),
		Method:      "cash",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return request
}

func TestApprove_MovesMoneyExactlyOnce(t *testing.T) {
	fx := newRechargeFixture(t)
	request := fx.createPending(t, 12000)

	decided, err := fx.svc.Approve(context.Background(), DecideInput{
		RequestID:      request.ID,
		DeciderAdminID: fx.adminID,
	})
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if decided.Status != enums.RechargeStatusApproved {
		t.Fatalf("expected approved status, got %s", decided.Status)
	}

	adminRef := balances.AccountRef{Type: enums.AccountAdmin, ID: fx.adminID}
	linkRef := balances.AccountRef{Type: enums.AccountCourierLink, ID: fx.linkID}
	if fx.balances.balances[adminRef] != 8000 {
		t.Fatalf("expected admin balance 8000, got %d", fx.balances.balances[adminRef])
	}
	if fx.balances.balances[linkRef] != 12000 {
		t.Fatalf("expected link balance 12000, got %d", fx.balances.balances[linkRef])
	}

	entries, _ := fx.balances.ListEntriesByRef(context.Background(), enums.LedgerRefRechargeRequest, request.ID)
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 ledger entries, got %d", len(entries))
	}
}

func TestApprove_SecondDeciderLoses(t *testing.T) {
	fx := newRechargeFixture(t)
	request := fx.createPending(t, 12000)

	input := DecideInput{RequestID: request.ID, DeciderAdminID: fx.adminID}
	if _, err := fx.svc.Approve(context.Background(), input); err != nil {
		t.Fatalf("first approve error: %v", err)
	}

	_, err := fx.svc.Approve(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyDecided {
		t.Fatalf("expected already decided error, got %v", err)
	}

	entries, _ := fx.balances.ListEntriesByRef(context.Background(), enums.LedgerRefRechargeRequest, request.ID)
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 ledger entries after replay, got %d", len(entries))
	}
}

func TestReject_NeverTouchesBalances(t *testing.T) {
	fx := newRechargeFixture(t)
	request := fx.createPending(t, 12000)

	reason := "no deposit proof"
	decided, err := fx.svc.Reject(context.Background(), DecideInput{
		RequestID:      request.ID,
		DeciderAdminID: fx.adminID,
		RejectReason:   &reason,
	})
	if err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if decided.Status != enums.RechargeStatusRejected {
		t.Fatalf("expected rejected status, got %s", decided.Status)
	}

	if len(fx.balances.entries) != 0 {
		t.Fatalf("reject must write no ledger entries, got %d", len(fx.balances.entries))
	}

	adminRef := balances.AccountRef{Type: enums.AccountAdmin, ID: fx.adminID}
	if fx.balances.balances[adminRef] != 20000 {
		t.Fatalf("admin balance changed on reject: %d", fx.balances.balances[adminRef])
	}
}

func TestApprove_AfterRejectFails(t *testing.T) {
	fx := newRechargeFixture(t)
	request := fx.createPending(t, 12000)

	if _, err := fx.svc.Reject(context.Background(), DecideInput{
		RequestID:      request.ID,
		DeciderAdminID: fx.adminID,
	}); err != nil {
		t.Fatalf("Reject error: %v", err)
	}

	_, err := fx.svc.Approve(context.Background(), DecideInput{
		RequestID:      request.ID,
		DeciderAdminID: fx.adminID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyDecided {
		t.Fatalf("expected already decided error, got %v", err)
	}
	if len(fx.balances.entries) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(fx.balances.entries))
	}
}

func TestApprove_InsufficientMasterBalance(t *testing.T) {
	fx := newRechargeFixture(t)
	request := fx.createPending(t, 50000)

	_, err := fx.svc.Approve(context.Background(), DecideInput{
		RequestID:      request.ID,
		DeciderAdminID: fx.adminID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
}

func TestDecide_UnauthorizedAdmin(t *testing.T) {
	fx := newRechargeFixture(t)
	request := fx.createPending(t, 12000)

	stranger := uuid.New()
	_, err := fx.svc.Approve(context.Background(), DecideInput{
		RequestID:      request.ID,
		DeciderAdminID: stranger,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestDecide_UnknownRequest(t *testing.T) {
	fx := newRechargeFixture(t)

	_, err := fx.svc.Approve(context.Background(), DecideInput{
		RequestID:      uuid.New(),
		DeciderAdminID: fx.adminID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	fx := newRechargeFixture(t)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{
			name: "zero amount",
			input: CreateInput{
				AdminID: fx.adminID, TargetType: enums.RechargeTargetCourier,
				TargetID: fx.courierID, RequestedBy: uuid.New(),
			},
		},
		{
			name: "negative amount",
			input: CreateInput{
				AdminID: fx.adminID, TargetType: enums.RechargeTargetCourier,
				TargetID: fx.courierID, Amount: -5, RequestedBy: uuid.New(),
			},
		},
		{
			name: "invalid target type",
			input: CreateInput{
				AdminID: fx.adminID, TargetType: enums.RechargeTargetType("WHO"),
				TargetID: fx.courierID, Amount: 100, RequestedBy: uuid.New(),
			},
		},
		{
			name: "missing admin",
			input: CreateInput{
				TargetType: enums.RechargeTargetCourier,
				TargetID:   fx.courierID, Amount: 100, RequestedBy: uuid.New(),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Create(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_TargetNotLinked(t *testing.T) {
	fx := newRechargeFixture(t)

	_, err := fx.svc.Create(context.Background(), CreateInput{
		AdminID:     fx.adminID,
		TargetType:  enums.RechargeTargetCourier,
		TargetID:    uuid.New(),
		Amount:      100,
		RequestedBy: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
