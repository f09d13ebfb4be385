package enums

import "fmt"

// NotificationType buckets in-app notifications by their trigger.
type NotificationType string

const (
	NotificationTypeBookingCreated    NotificationType = "booking_created"
	NotificationTypeBookingStatus     NotificationType = "booking_status"
	NotificationTypeTeamAssigned      NotificationType = "team_assigned"
	NotificationTypeMemberJoined      NotificationType = "member_joined"
	NotificationTypeMemberRoleChanged NotificationType = "member_role_changed"
	NotificationTypeInvitationSent    NotificationType = "invitation_sent"
	NotificationTypeShiftReminder     NotificationType = "shift_reminder"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeBookingCreated,
	NotificationTypeBookingStatus,
	NotificationTypeTeamAssigned,
	NotificationTypeMemberJoined,
	NotificationTypeMemberRoleChanged,
	NotificationTypeInvitationSent,
	NotificationTypeShiftReminder,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value matches a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
