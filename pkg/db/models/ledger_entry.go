package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/domiquerendona/domiq-backend/pkg/enums"
)

// LedgerEntry is one append-only row of the money journal. Amount is
// signed minor units: negative for debits, positive for credits. Every
// balance mutation writes exactly one entry in the same transaction,
// keyed back to the business event through RefType and RefID.
type LedgerEntry struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountType enums.AccountType   `gorm:"column:account_type;type:text;not null;index:idx_ledger_account"`
	AccountID   uuid.UUID           `gorm:"column:account_id;type:uuid;not null;index:idx_ledger_account"`
	Amount      int64               `gorm:"column:amount;not null"`
	RefType     enums.LedgerRefType `gorm:"column:ref_type;type:text;not null;index:idx_ledger_ref"`
	RefID       uuid.UUID           `gorm:"column:ref_id;type:uuid;not null;index:idx_ledger_ref"`
	Memo        *string             `gorm:"column:memo;type:text"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
