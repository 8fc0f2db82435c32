package enums

import "fmt"

// RechargeTargetType identifies which link balance a recharge credits.
type RechargeTargetType string

const (
	RechargeTargetCourier RechargeTargetType = "COURIER"
	RechargeTargetAlly    RechargeTargetType = "ALLY"
)

var validRechargeTargetTypes = []RechargeTargetType{
	RechargeTargetCourier,
	RechargeTargetAlly,
}

// String implements fmt.Stringer.
func (r RechargeTargetType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RechargeTargetType.
func (r RechargeTargetType) IsValid() bool {
	for _, candidate := range validRechargeTargetTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRechargeTargetType converts raw input into a RechargeTargetType.
func ParseRechargeTargetType(value string) (RechargeTargetType, error) {
	for _, candidate := range validRechargeTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recharge target type %q", value)
}
