package enums

import "fmt"

// ShiftStatus tracks a team member's scheduled work unit.
type ShiftStatus string

const (
	ShiftStatusScheduled  ShiftStatus = "scheduled"
	ShiftStatusCheckedIn  ShiftStatus = "checked_in"
	ShiftStatusCheckedOut ShiftStatus = "checked_out"
)

var validShiftStatuses = []ShiftStatus{
	ShiftStatusScheduled,
	ShiftStatusCheckedIn,
	ShiftStatusCheckedOut,
}

// String implements fmt.Stringer.
func (s ShiftStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known ShiftStatus.
func (s ShiftStatus) IsValid() bool {
	for _, candidate := range validShiftStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the shift may move to target.
func (s ShiftStatus) CanTransitionTo(target ShiftStatus) bool {
	switch s {
	case ShiftStatusScheduled:
		return target == ShiftStatusCheckedIn
	case ShiftStatusCheckedIn:
		return target == ShiftStatusCheckedOut
	default:
		return false
	}
}

// ParseShiftStatus converts raw input into a ShiftStatus.
func ParseShiftStatus(value string) (ShiftStatus, error) {
	for _, candidate := range validShiftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shift status %q", value)
}
