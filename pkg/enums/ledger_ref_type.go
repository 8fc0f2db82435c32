package enums

import "fmt"

// LedgerRefType names the business event a ledger entry reconciles to.
type LedgerRefType string

const (
	LedgerRefRechargeRequest LedgerRefType = "RECHARGE_REQUEST"
	LedgerRefOrder           LedgerRefType = "ORDER"
	LedgerRefAdjustment      LedgerRefType = "ADJUSTMENT"
)

var validLedgerRefTypes = []LedgerRefType{
	LedgerRefRechargeRequest,
	LedgerRefOrder,
	LedgerRefAdjustment,
}

// String implements fmt.Stringer.
func (l LedgerRefType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerRefType.
func (l LedgerRefType) IsValid() bool {
	for _, candidate := range validLedgerRefTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerRefType converts raw input into a LedgerRefType.
func ParseLedgerRefType(value string) (LedgerRefType, error) {
	for _, candidate := range validLedgerRefTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger ref type %q", value)
}
