package enums

import "fmt"

// MemberRole represents a provider-level permissions role.
type MemberRole string

const (
	MemberRoleOwner      MemberRole = "owner"
	MemberRoleAdmin      MemberRole = "admin"
	MemberRoleSupervisor MemberRole = "supervisor"
	MemberRoleStaff      MemberRole = "staff"
	MemberRoleViewer     MemberRole = "viewer"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleSupervisor,
	MemberRoleStaff,
	MemberRoleViewer,
}

// memberRoleRanks orders roles by privilege; lower rank wins.
var memberRoleRanks = map[MemberRole]int{
	MemberRoleOwner:      1,
	MemberRoleAdmin:      2,
	MemberRoleSupervisor: 3,
	MemberRoleStaff:      4,
	MemberRoleViewer:     5,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	_, ok := memberRoleRanks[m]
	return ok
}

// Rank returns the privilege rank for the role; unknown roles rank below viewer.
func (m MemberRole) Rank() int {
	if rank, ok := memberRoleRanks[m]; ok {
		return rank
	}
	return len(memberRoleRanks) + 1
}

// AtLeast reports whether the role holds the privilege of other or better.
func (m MemberRole) AtLeast(other MemberRole) bool {
	return m.IsValid() && m.Rank() <= other.Rank()
}

// MemberRoles returns all known roles in rank order.
func MemberRoles() []MemberRole {
	out := make([]MemberRole, len(validMemberRoles))
	copy(out, validMemberRoles)
	return out
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
