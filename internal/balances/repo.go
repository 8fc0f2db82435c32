package balances

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// AccountRef points at one balance column: the admin master balance or a
// courier/ally link wallet.
type AccountRef struct {
	Type enums.AccountType
	ID   uuid.UUID
}

// Repository manages persistence for balances and the ledger journal.
// Debit is the only conditional write: it mutates nothing and reports
// false when the guarded balance check fails.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Debit(ctx context.Context, ref AccountRef, amount int64) (bool, error)
	Credit(ctx context.Context, ref AccountRef, amount int64) (bool, error)
	GetBalance(ctx context.Context, ref AccountRef) (int64, error)
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntriesByRef(ctx context.Context, refType enums.LedgerRefType, refID uuid.UUID) ([]models.LedgerEntry, error)
	ListEntriesByAccount(ctx context.Context, ref AccountRef, limit int) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a balances repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func accountModel(ref AccountRef) any {
	switch ref.Type {
	case enums.AccountAdmin:
		return &models.Admin{}
	case enums.AccountCourierLink:
		return &models.AdminCourier{}
	default:
		return &models.AdminAlly{}
	}
}

func (r *repository) Debit(ctx context.Context, ref AccountRef, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(accountModel(ref)).
		Where("id = ? AND balance >= ?", ref.ID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Credit(ctx context.Context, ref AccountRef, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(accountModel(ref)).
		Where("id = ?", ref.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) GetBalance(ctx context.Context, ref AccountRef) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(accountModel(ref)).
		Where("id = ?", ref.ID).
		Select("balance").
		Take(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntriesByRef(ctx context.Context, refType enums.LedgerRefType, refID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("ref_type = ? AND ref_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListEntriesByAccount(ctx context.Context, ref AccountRef, limit int) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).
		Where("account_type = ? AND account_id = ?", ref.Type, ref.ID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []models.LedgerEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
