package enums

import "fmt"

// CancelActor identifies who cancelled an order.
type CancelActor string

const (
	CancelActorSystem CancelActor = "SYSTEM"
	CancelActorAdmin  CancelActor = "ADMIN"
	CancelActorAlly   CancelActor = "ALLY"
)

var validCancelActors = []CancelActor{
	CancelActorSystem,
	CancelActorAdmin,
	CancelActorAlly,
}

// String implements fmt.Stringer.
func (c CancelActor) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CancelActor.
func (c CancelActor) IsValid() bool {
	for _, candidate := range validCancelActors {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCancelActor converts raw input into a CancelActor.
func ParseCancelActor(value string) (CancelActor, error) {
	for _, candidate := range validCancelActors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancel actor %q", value)
}
