package enums

import "fmt"

// BookingStatus tracks a catering event through its lifecycle.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// bookingTransitions is the closed set of allowed status moves.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value matches a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[b]
	return ok
}

// IsTerminal reports whether no further transitions exist from this status.
func (b BookingStatus) IsTerminal() bool {
	next, ok := bookingTransitions[b]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the move from b to target is allowed.
func (b BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, candidate := range bookingTransitions[b] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
