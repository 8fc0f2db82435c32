package enums

import (
	"fmt"
	"strings"
)

// RoleStatus tracks the approval lifecycle shared by admins, couriers,
// allies, and their link records.
type RoleStatus string

const (
	RoleStatusPending  RoleStatus = "PENDING"
	RoleStatusApproved RoleStatus = "APPROVED"
	RoleStatusRejected RoleStatus = "REJECTED"
	RoleStatusInactive RoleStatus = "INACTIVE"
)

var validRoleStatuses = []RoleStatus{
	RoleStatusPending,
	RoleStatusApproved,
	RoleStatusRejected,
	RoleStatusInactive,
}

// String implements fmt.Stringer.
func (r RoleStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RoleStatus.
func (r RoleStatus) IsValid() bool {
	for _, candidate := range validRoleStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRoleStatus converts raw input into a RoleStatus. Input is
// trimmed and upper-cased before matching.
func ParseRoleStatus(value string) (RoleStatus, error) {
	normalized := RoleStatus(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validRoleStatuses {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role status %q", value)
}
