package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

type stubResolver struct {
	member *memberships.Membership
	err    error

	gotUser     uuid.UUID
	gotProvider *uuid.UUID
}

func (s *stubResolver) Resolve(_ context.Context, userID uuid.UUID, providerID *uuid.UUID) (*memberships.Membership, error) {
	s.gotUser = userID
	s.gotProvider = providerID
	return s.member, s.err
}

func seededRequest(userID, providerID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()
	if userID != "" {
		ctx = WithUserID(ctx, userID)
	}
	if providerID != "" {
		ctx = WithProviderID(ctx, providerID)
	}
	return req.WithContext(ctx)
}

func TestRequireCapabilityAllowsGrantedFlag(t *testing.T) {
	member := &memberships.Membership{
		MemberID:     uuid.New(),
		ProviderID:   uuid.New(),
		UserID:       uuid.New(),
		Role:         enums.MemberRoleAdmin,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleAdmin),
	}
	resolver := &stubResolver{member: member}

	var seeded *memberships.Membership
	handler := RequireCapability(resolver, nil, func(c memberships.Capabilities) bool { return c.CanInviteMembers })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seeded = MembershipFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, seededRequest(member.UserID.String(), member.ProviderID.String()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seeded == nil || seeded.MemberID != member.MemberID {
		t.Fatalf("expected resolved membership in context, got %+v", seeded)
	}
	if resolver.gotProvider == nil || *resolver.gotProvider != member.ProviderID {
		t.Fatalf("expected provider scope passed to resolver, got %v", resolver.gotProvider)
	}
}

func TestRequireCapabilityRejectsMissingFlag(t *testing.T) {
	member := &memberships.Membership{
		MemberID:     uuid.New(),
		UserID:       uuid.New(),
		Role:         enums.MemberRoleStaff,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleStaff),
	}
	handler := RequireCapability(&stubResolver{member: member}, nil, func(c memberships.Capabilities) bool { return c.CanManageRoles })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, seededRequest(member.UserID.String(), uuid.NewString()))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireCapabilityRejectsNoMembership(t *testing.T) {
	handler := RequireCapability(&stubResolver{}, nil, func(c memberships.Capabilities) bool { return c.CanInviteMembers })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, seededRequest(uuid.NewString(), uuid.NewString()))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireCapabilityRejectsMissingUser(t *testing.T) {
	handler := RequireCapability(&stubResolver{}, nil, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, seededRequest("", ""))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireMembershipSeedsWithoutGating(t *testing.T) {
	member := &memberships.Membership{
		MemberID:     uuid.New(),
		UserID:       uuid.New(),
		Role:         enums.MemberRoleViewer,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleViewer),
	}
	var seeded *memberships.Membership
	handler := RequireMembership(&stubResolver{member: member}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seeded = MembershipFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, seededRequest(member.UserID.String(), ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seeded == nil || seeded.Role != enums.MemberRoleViewer {
		t.Fatalf("expected viewer membership seeded, got %+v", seeded)
	}
}
