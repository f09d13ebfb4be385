package enums

import "testing"

func TestMemberRoleRankOrdering(t *testing.T) {
	ordered := []MemberRole{
		MemberRoleOwner,
		MemberRoleAdmin,
		MemberRoleSupervisor,
		MemberRoleStaff,
		MemberRoleViewer,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Fatalf("expected %s to outrank %s", ordered[i-1], ordered[i])
		}
	}
}

func TestMemberRoleAtLeast(t *testing.T) {
	if !MemberRoleOwner.AtLeast(MemberRoleAdmin) {
		t.Fatal("owner should satisfy admin threshold")
	}
	if !MemberRoleAdmin.AtLeast(MemberRoleAdmin) {
		t.Fatal("admin should satisfy admin threshold")
	}
	if MemberRoleSupervisor.AtLeast(MemberRoleAdmin) {
		t.Fatal("supervisor should not satisfy admin threshold")
	}
	if MemberRole("bogus").AtLeast(MemberRoleViewer) {
		t.Fatal("unknown role should never satisfy a threshold")
	}
}

func TestParseMemberRole(t *testing.T) {
	role, err := ParseMemberRole("staff")
	if err != nil {
		t.Fatalf("parse staff: %v", err)
	}
	if role != MemberRoleStaff {
		t.Fatalf("unexpected role %s", role)
	}
	if _, err := ParseMemberRole("janitor"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestUnknownRoleRanksBelowViewer(t *testing.T) {
	if MemberRole("bogus").Rank() <= MemberRoleViewer.Rank() {
		t.Fatal("unknown role must rank below viewer")
	}
}
