package enums

import "fmt"

// AccountType identifies which balance column a ledger entry touched.
// Admin master balances live on the admin row; courier and ally balances
// live on the membership link rows, scoped per admin team.
type AccountType string

const (
	AccountAdmin       AccountType = "ADMIN"
	AccountCourierLink AccountType = "COURIER_LINK"
	AccountAllyLink    AccountType = "ALLY_LINK"
)

var validAccountTypes = []AccountType{
	AccountAdmin,
	AccountCourierLink,
	AccountAllyLink,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
