package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/users"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type stubAdminRepo struct {
	byID        map[uuid.UUID]*models.ProviderMembership
	active      map[uuid.UUID]*models.ProviderMembership
	ownerCount  int64
	roleUpdates map[uuid.UUID]enums.MemberRole
	statuses    map[uuid.UUID]enums.MembershipStatus
	deleted     []uuid.UUID
	created     *models.ProviderMembership
	members     []ProviderMemberDTO
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{
		byID:        map[uuid.UUID]*models.ProviderMembership{},
		active:      map[uuid.UUID]*models.ProviderMembership{},
		roleUpdates: map[uuid.UUID]enums.MemberRole{},
		statuses:    map[uuid.UUID]enums.MembershipStatus{},
	}
}

func (s *stubAdminRepo) GetByID(ctx context.Context, membershipID uuid.UUID) (*models.ProviderMembership, error) {
	if m, ok := s.byID[membershipID]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error) {
	if m, ok := s.active[userID]; ok && m.ProviderID == providerID {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) CreateMembership(ctx context.Context, providerID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.ProviderMembership, error) {
	s.created = &models.ProviderMembership{
		ID:         uuid.New(),
		ProviderID: providerID,
		UserID:     userID,
		Role:       role,
		Status:     status,
	}
	return s.created, nil
}

func (s *stubAdminRepo) ListProviderMembers(ctx context.Context, providerID uuid.UUID) ([]ProviderMemberDTO, error) {
	return s.members, nil
}

func (s *stubAdminRepo) CountActiveByRole(ctx context.Context, providerID uuid.UUID, role enums.MemberRole) (int64, error) {
	return s.ownerCount, nil
}

func (s *stubAdminRepo) UpdateRole(ctx context.Context, membershipID uuid.UUID, role enums.MemberRole) error {
	s.roleUpdates[membershipID] = role
	return nil
}

func (s *stubAdminRepo) UpdateStatus(ctx context.Context, membershipID uuid.UUID, status enums.MembershipStatus) error {
	s.statuses[membershipID] = status
	return nil
}

func (s *stubAdminRepo) Delete(ctx context.Context, membershipID uuid.UUID) error {
	s.deleted = append(s.deleted, membershipID)
	return nil
}

type stubAdminUsers struct {
	byEmail map[string]*models.User
	created *models.User
}

func (s *stubAdminUsers) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	s.created = &models.User{
		ID:        uuid.New(),
		Email:     dto.Email,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
	}
	return s.created, nil
}

func (s *stubAdminUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type captureAuditor struct {
	events []audit.Event
}

func (c *captureAuditor) Record(ctx context.Context, event audit.Event) {
	c.events = append(c.events, event)
}

type adminFixture struct {
	repo    *stubAdminRepo
	users   *stubAdminUsers
	auditor *captureAuditor
	svc     AdminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		repo:    newStubAdminRepo(),
		users:   &stubAdminUsers{byEmail: map[string]*models.User{}},
		auditor: &captureAuditor{},
	}
	svc, err := NewAdminService(f.repo, f.users, f.auditor, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("NewAdminService: %v", err)
	}
	f.svc = svc
	return f
}

func adminActor(providerID uuid.UUID) *Membership {
	return &Membership{
		MemberID:     uuid.New(),
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleAdmin,
		Status:       enums.MembershipStatusActive,
		Capabilities: DeriveCapabilities(enums.MemberRoleAdmin),
	}
}

func seedMember(f *adminFixture, providerID uuid.UUID, role enums.MemberRole, status enums.MembershipStatus) *models.ProviderMembership {
	m := &models.ProviderMembership{
		ID:         uuid.New(),
		ProviderID: providerID,
		UserID:     uuid.New(),
		Role:       role,
		Status:     status,
	}
	f.repo.byID[m.ID] = m
	return m
}

func TestChangeRole(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	member := seedMember(f, providerID, enums.MemberRoleStaff, enums.MembershipStatusActive)

	dto, err := f.svc.ChangeRole(context.Background(), actor, member.ID, enums.MemberRoleSupervisor)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if dto.Role != enums.MemberRoleSupervisor {
		t.Fatalf("unexpected role %s", dto.Role)
	}
	if f.repo.roleUpdates[member.ID] != enums.MemberRoleSupervisor {
		t.Fatal("role update not persisted")
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != enums.AuditActionMemberRoleChanged {
		t.Fatalf("expected role change audit event, got %+v", f.auditor.events)
	}
}

func TestChangeRoleLastOwnerBlocked(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	owner := seedMember(f, providerID, enums.MemberRoleOwner, enums.MembershipStatusActive)
	f.repo.ownerCount = 1

	_, err := f.svc.ChangeRole(context.Background(), actor, owner.ID, enums.MemberRoleAdmin)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.repo.roleUpdates) != 0 {
		t.Fatal("no role change should be written")
	}
}

func TestChangeRoleSecondOwnerAllowed(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	owner := seedMember(f, providerID, enums.MemberRoleOwner, enums.MembershipStatusActive)
	f.repo.ownerCount = 2

	if _, err := f.svc.ChangeRole(context.Background(), actor, owner.ID, enums.MemberRoleAdmin); err != nil {
		t.Fatalf("change role: %v", err)
	}
}

func TestChangeRoleCrossProviderNotFound(t *testing.T) {
	f := newAdminFixture(t)
	actor := adminActor(uuid.New())
	foreign := seedMember(f, uuid.New(), enums.MemberRoleStaff, enums.MembershipStatusActive)

	_, err := f.svc.ChangeRole(context.Background(), actor, foreign.ID, enums.MemberRoleSupervisor)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSuspendAndReactivate(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	member := seedMember(f, providerID, enums.MemberRoleStaff, enums.MembershipStatusActive)

	dto, err := f.svc.Suspend(context.Background(), actor, member.ID)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if dto.Status != enums.MembershipStatusSuspended {
		t.Fatalf("unexpected status %s", dto.Status)
	}

	member.Status = enums.MembershipStatusSuspended
	dto, err = f.svc.Reactivate(context.Background(), actor, member.ID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if dto.Status != enums.MembershipStatusActive {
		t.Fatalf("unexpected status %s", dto.Status)
	}
	if len(f.auditor.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(f.auditor.events))
	}
}

func TestSuspendLastOwnerBlocked(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	owner := seedMember(f, providerID, enums.MemberRoleOwner, enums.MembershipStatusActive)
	f.repo.ownerCount = 1

	_, err := f.svc.Suspend(context.Background(), actor, owner.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReactivatePendingRejected(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	member := seedMember(f, providerID, enums.MemberRoleStaff, enums.MembershipStatusPending)

	_, err := f.svc.Reactivate(context.Background(), actor, member.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	member := seedMember(f, providerID, enums.MemberRoleStaff, enums.MembershipStatusActive)

	if err := f.svc.Remove(context.Background(), actor, member.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(f.repo.deleted) != 1 || f.repo.deleted[0] != member.ID {
		t.Fatal("expected the membership row to be deleted")
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != enums.AuditActionMemberRemoved {
		t.Fatalf("expected member removed audit event, got %+v", f.auditor.events)
	}
}

func TestRemoveForbiddenForStaff(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := &Membership{
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleStaff,
		Capabilities: DeriveCapabilities(enums.MemberRoleStaff),
	}
	member := seedMember(f, providerID, enums.MemberRoleStaff, enums.MembershipStatusActive)

	err := f.svc.Remove(context.Background(), actor, member.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateMemberNewUser(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)

	result, err := f.svc.CreateMember(context.Background(), actor, CreateMemberInput{
		Email:     "New.Cook@Example.PH",
		FirstName: "Ana",
		LastName:  "Reyes",
		Role:      enums.MemberRoleStaff,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if !result.UserCreated {
		t.Fatal("expected a new user account")
	}
	if result.TempPassword == "" {
		t.Fatal("expected a temporary password for the new account")
	}
	if f.users.created == nil || f.users.created.Email != "new.cook@example.ph" {
		t.Fatalf("email not normalized: %+v", f.users.created)
	}
	if f.repo.created == nil || f.repo.created.Status != enums.MembershipStatusActive {
		t.Fatalf("expected an active membership, got %+v", f.repo.created)
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != enums.AuditActionMemberCreated {
		t.Fatalf("expected member created audit event, got %+v", f.auditor.events)
	}
}

func TestCreateMemberExistingUser(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	existing := &models.User{ID: uuid.New(), Email: "cook@example.ph"}
	f.users.byEmail["cook@example.ph"] = existing

	result, err := f.svc.CreateMember(context.Background(), actor, CreateMemberInput{
		Email: "cook@example.ph",
		Role:  enums.MemberRoleStaff,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if result.UserCreated {
		t.Fatal("no user should be minted for an existing account")
	}
	if result.TempPassword != "" {
		t.Fatal("temp password must not be issued for an existing account")
	}
	if result.UserID != existing.ID {
		t.Fatalf("unexpected user id %s", result.UserID)
	}
}

func TestCreateMemberAlreadyMemberConflict(t *testing.T) {
	f := newAdminFixture(t)
	providerID := uuid.New()
	actor := adminActor(providerID)
	existing := &models.User{ID: uuid.New(), Email: "cook@example.ph"}
	f.users.byEmail["cook@example.ph"] = existing
	f.repo.active[existing.ID] = &models.ProviderMembership{UserID: existing.ID, ProviderID: providerID}

	_, err := f.svc.CreateMember(context.Background(), actor, CreateMemberInput{
		Email: "cook@example.ph",
		Role:  enums.MemberRoleStaff,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
