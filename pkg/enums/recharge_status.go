package enums

import "fmt"

// RechargeStatus tracks the decision lifecycle of a recharge request.
// Approved and rejected are terminal.
type RechargeStatus string

const (
	RechargeStatusPending  RechargeStatus = "PENDING"
	RechargeStatusApproved RechargeStatus = "APPROVED"
	RechargeStatusRejected RechargeStatus = "REJECTED"
)

var validRechargeStatuses = []RechargeStatus{
	RechargeStatusPending,
	RechargeStatusApproved,
	RechargeStatusRejected,
}

// String implements fmt.Stringer.
func (r RechargeStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RechargeStatus.
func (r RechargeStatus) IsValid() bool {
	for _, candidate := range validRechargeStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (r RechargeStatus) IsTerminal() bool {
	return r == RechargeStatusApproved || r == RechargeStatusRejected
}

// ParseRechargeStatus converts raw input into a RechargeStatus.
func ParseRechargeStatus(value string) (RechargeStatus, error) {
	for _, candidate := range validRechargeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recharge status %q", value)
}
