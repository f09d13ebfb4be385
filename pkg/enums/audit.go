package enums

import "fmt"

// AuditAction names a recorded action on the audit side channel.
type AuditAction string

const (
	AuditActionMemberInvited     AuditAction = "member.invited"
	AuditActionInvitationResent  AuditAction = "invitation.resent"
	AuditActionInvitationAccept  AuditAction = "invitation.accepted"
	AuditActionMemberCreated     AuditAction = "member.created"
	AuditActionMemberRoleChanged AuditAction = "member.role_changed"
	AuditActionMemberSuspended   AuditAction = "member.suspended"
	AuditActionMemberReactivated AuditAction = "member.reactivated"
	AuditActionMemberRemoved     AuditAction = "member.removed"
	AuditActionBookingAssigned   AuditAction = "booking.team_assigned"
	AuditActionProfileUpdated    AuditAction = "provider.profile_updated"
	AuditActionGalleryUpdated    AuditAction = "provider.gallery_updated"
	AuditActionLocationsSaved    AuditAction = "provider.locations_saved"
	AuditActionLocationDeleted   AuditAction = "provider.location_deleted"
)

// AuditEntityType names the aggregate an audit event refers to.
type AuditEntityType string

const (
	AuditEntityMembership AuditEntityType = "membership"
	AuditEntityInvitation AuditEntityType = "invitation"
	AuditEntityBooking    AuditEntityType = "booking"
	AuditEntityProvider   AuditEntityType = "provider"
	AuditEntityLocation   AuditEntityType = "location"
)

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// String implements fmt.Stringer.
func (a AuditEntityType) String() string {
	return string(a)
}

// ParseAuditEntityType converts raw input into an AuditEntityType.
func ParseAuditEntityType(value string) (AuditEntityType, error) {
	for _, candidate := range []AuditEntityType{
		AuditEntityMembership,
		AuditEntityInvitation,
		AuditEntityBooking,
		AuditEntityProvider,
		AuditEntityLocation,
	} {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit entity type %q", value)
}
