package memberships

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/users"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/security"
)

const tempPasswordLength = 16

type adminMembershipRepository interface {
	GetByID(ctx context.Context, membershipID uuid.UUID) (*models.ProviderMembership, error)
	GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error)
	CreateMembership(ctx context.Context, providerID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.ProviderMembership, error)
	ListProviderMembers(ctx context.Context, providerID uuid.UUID) ([]ProviderMemberDTO, error)
	CountActiveByRole(ctx context.Context, providerID uuid.UUID, role enums.MemberRole) (int64, error)
	UpdateRole(ctx context.Context, membershipID uuid.UUID, role enums.MemberRole) error
	UpdateStatus(ctx context.Context, membershipID uuid.UUID, status enums.MembershipStatus) error
	Delete(ctx context.Context, membershipID uuid.UUID) error
}

type adminUsersRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type adminAuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// AdminService covers roster administration: listing, role changes, status
// transitions, removal, and direct member creation.
type AdminService interface {
	ListMembers(ctx context.Context, actor *Membership) ([]ProviderMemberDTO, error)
	ChangeRole(ctx context.Context, actor *Membership, membershipID uuid.UUID, role enums.MemberRole) (*MembershipDTO, error)
	Suspend(ctx context.Context, actor *Membership, membershipID uuid.UUID) (*MembershipDTO, error)
	Reactivate(ctx context.Context, actor *Membership, membershipID uuid.UUID) (*MembershipDTO, error)
	Remove(ctx context.Context, actor *Membership, membershipID uuid.UUID) error
	CreateMember(ctx context.Context, actor *Membership, input CreateMemberInput) (*CreateMemberResult, error)
}

type adminService struct {
	repo     adminMembershipRepository
	users    adminUsersRepository
	audit    adminAuditRecorder
	password config.PasswordConfig
}

// NewAdminService wires the roster administration service.
func NewAdminService(repo adminMembershipRepository, usersRepo adminUsersRepository, auditor adminAuditRecorder, password config.PasswordConfig) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("membership repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &adminService{
		repo:     repo,
		users:    usersRepo,
		audit:    auditor,
		password: password,
	}, nil
}

// CreateMemberInput is the payload for direct member creation by an admin.
type CreateMemberInput struct {
	Email     string           `validate:"required,email"`
	FirstName string           `validate:"required"`
	LastName  string           `validate:"required"`
	Phone     *string          `validate:"omitempty,e164"`
	Role      enums.MemberRole `validate:"required"`
}

// CreateMemberResult returns the minted membership plus the one-time
// temporary password when a user account was created for the member.
type CreateMemberResult struct {
	Membership   *MembershipDTO `json:"membership"`
	UserID       uuid.UUID      `json:"user_id"`
	UserCreated  bool           `json:"user_created"`
	TempPassword string         `json:"temp_password,omitempty"`
}

func (s *adminService) ListMembers(ctx context.Context, actor *Membership) ([]ProviderMemberDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	members, err := s.repo.ListProviderMembers(ctx, actor.ProviderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *adminService) ChangeRole(ctx context.Context, actor *Membership, membershipID uuid.UUID, role enums.MemberRole) (*MembershipDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanManageRoles {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	membership, err := s.loadProviderMembership(ctx, actor.ProviderID, membershipID)
	if err != nil {
		return nil, err
	}
	if membership.Role == role {
		return ToDTO(membership), nil
	}

	if err := s.guardLastOwner(ctx, membership); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRole(ctx, membershipID, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}

	s.recordAudit(ctx, actor, enums.AuditActionMemberRoleChanged, membership, map[string]any{
		"from": string(membership.Role),
		"to":   string(role),
	})

	membership.Role = role
	return ToDTO(membership), nil
}

func (s *adminService) Suspend(ctx context.Context, actor *Membership, membershipID uuid.UUID) (*MembershipDTO, error) {
	return s.transitionStatus(ctx, actor, membershipID, enums.MembershipStatusSuspended, enums.AuditActionMemberSuspended)
}

func (s *adminService) Reactivate(ctx context.Context, actor *Membership, membershipID uuid.UUID) (*MembershipDTO, error) {
	return s.transitionStatus(ctx, actor, membershipID, enums.MembershipStatusActive, enums.AuditActionMemberReactivated)
}

func (s *adminService) transitionStatus(ctx context.Context, actor *Membership, membershipID uuid.UUID, target enums.MembershipStatus, action enums.AuditAction) (*MembershipDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanRemoveMembers {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	membership, err := s.loadProviderMembership(ctx, actor.ProviderID, membershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status == target {
		return ToDTO(membership), nil
	}

	switch target {
	case enums.MembershipStatusSuspended:
		if membership.Status != enums.MembershipStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active members can be suspended")
		}
		if err := s.guardLastOwner(ctx, membership); err != nil {
			return nil, err
		}
	case enums.MembershipStatusActive:
		if membership.Status != enums.MembershipStatusSuspended {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only suspended members can be reactivated")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported status transition")
	}

	if err := s.repo.UpdateStatus(ctx, membershipID, target); err != nil {
		if db.IsUniqueViolation(err, "idx_memberships_one_active") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already holds an active membership")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update membership status")
	}

	s.recordAudit(ctx, actor, action, membership, map[string]any{
		"from": string(membership.Status),
		"to":   string(target),
	})

	membership.Status = target
	return ToDTO(membership), nil
}

func (s *adminService) Remove(ctx context.Context, actor *Membership, membershipID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanRemoveMembers {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	membership, err := s.loadProviderMembership(ctx, actor.ProviderID, membershipID)
	if err != nil {
		return err
	}
	if err := s.guardLastOwner(ctx, membership); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, membershipID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove member")
	}

	s.recordAudit(ctx, actor, enums.AuditActionMemberRemoved, membership, map[string]any{
		"user_id": membership.UserID.String(),
		"role":    string(membership.Role),
	})
	return nil
}

// CreateMember provisions a member directly, minting a user account with a
// temporary password when no account exists for the email. The temp password
// is returned once and never stored in the clear.
func (s *adminService) CreateMember(ctx context.Context, actor *Membership, input CreateMemberInput) (*CreateMemberResult, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanInviteMembers {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	result := &CreateMemberResult{}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := s.repo.GetActiveMembership(ctx, user.ID, actor.ProviderID); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name required for a new member")
		}

		tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temporary password")
		}
		hash, err := security.HashPassword(tempPassword, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temporary password")
		}

		user, err = s.users.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Phone:        input.Phone,
			ProviderIDs:  []uuid.UUID{actor.ProviderID},
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		result.UserCreated = true
		result.TempPassword = tempPassword
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	invitedBy := actor.UserID
	membership, err := s.repo.CreateMembership(ctx, actor.ProviderID, user.ID, input.Role, &invitedBy, enums.MembershipStatusActive)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_memberships_one_active") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user is already a member")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	s.recordAudit(ctx, actor, enums.AuditActionMemberCreated, membership, map[string]any{
		"user_id":      user.ID.String(),
		"role":         string(input.Role),
		"user_created": result.UserCreated,
	})

	result.Membership = ToDTO(membership)
	result.UserID = user.ID
	return result, nil
}

func (s *adminService) loadProviderMembership(ctx context.Context, providerID, membershipID uuid.UUID) (*models.ProviderMembership, error) {
	membership, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if membership.ProviderID != providerID {
		// Cross-tenant probes read as not found.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return membership, nil
}

// guardLastOwner blocks demoting, suspending, or removing a provider's only
// active owner.
func (s *adminService) guardLastOwner(ctx context.Context, membership *models.ProviderMembership) error {
	if membership.Role != enums.MemberRoleOwner || membership.Status != enums.MembershipStatusActive {
		return nil
	}

	owners, err := s.repo.CountActiveByRole(ctx, membership.ProviderID, enums.MemberRoleOwner)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owners")
	}
	if owners <= 1 {
		return pkgerrors.New(pkgerrors.CodeConflict, "provider must keep at least one owner")
	}
	return nil
}

func (s *adminService) recordAudit(ctx context.Context, actor *Membership, action enums.AuditAction, membership *models.ProviderMembership, data map[string]any) {
	if s.audit == nil {
		return
	}
	providerID := actor.ProviderID
	s.audit.Record(ctx, audit.Event{
		ProviderID: providerID,
		Action:     action,
		EntityType: enums.AuditEntityMembership,
		EntityID:   &membership.ID,
		Actor: &audit.ActorRef{
			UserID:     actor.UserID,
			ProviderID: &providerID,
			Role:       string(actor.Role),
		},
		Data: data,
	})
}
