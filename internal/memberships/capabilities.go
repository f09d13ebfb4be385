package memberships

import "github.com/caterkita/caterkita-backend/pkg/enums"

// Capabilities is the flattened permission set handed to the request
// pipeline. Fields are derived from the member role, never stored.
type Capabilities struct {
	CanInviteMembers        bool `json:"can_invite_members"`
	CanRemoveMembers        bool `json:"can_remove_members"`
	CanManageRoles          bool `json:"can_manage_roles"`
	CanViewAllBookings      bool `json:"can_view_all_bookings"`
	CanEditAllBookings      bool `json:"can_edit_all_bookings"`
	CanAssignBookings       bool `json:"can_assign_bookings"`
	CanViewAnalytics        bool `json:"can_view_analytics"`
	CanManageBilling        bool `json:"can_manage_billing"`
	CanEditProviderSettings bool `json:"can_edit_provider_settings"`
}

// DeriveCapabilities maps a role onto its capability set. Every flag is
// granted at admin rank or better; an unknown role grants nothing.
func DeriveCapabilities(role enums.MemberRole) Capabilities {
	if !role.AtLeast(enums.MemberRoleAdmin) {
		return Capabilities{}
	}
	return Capabilities{
		CanInviteMembers:        true,
		CanRemoveMembers:        true,
		CanManageRoles:          true,
		CanViewAllBookings:      true,
		CanEditAllBookings:      true,
		CanAssignBookings:       true,
		CanViewAnalytics:        true,
		CanManageBilling:        true,
		CanEditProviderSettings: true,
	}
}
