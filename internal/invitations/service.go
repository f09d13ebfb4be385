package invitations

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/internal/notifications"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/mailer"
)

const tokenBytes = 32

type invitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Invitation, error)
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)
	FindPendingByEmail(ctx context.Context, providerID uuid.UUID, email string) (*models.Invitation, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Invitation, error)
	MarkResent(ctx context.Context, id uuid.UUID, token string, expiresAt, sentAt time.Time) error
	Revoke(ctx context.Context, providerID, id uuid.UUID, at time.Time) error
	AcceptTx(tx *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
	CreateMembershipTx(tx *gorm.DB, invitation *models.Invitation, userID uuid.UUID, at time.Time) (*models.ProviderMembership, error)
}

type usersReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type membershipsReader interface {
	GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error)
}

type providersReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
	RecordTx(ctx context.Context, tx *gorm.DB, event audit.Event) error
}

type notifier interface {
	Enqueue(ctx context.Context, input notifications.EnqueueInput)
}

// Service exposes the invitation lifecycle.
type Service interface {
	Create(ctx context.Context, actor *memberships.Membership, input CreateInvitationInput) (*InvitationDTO, error)
	List(ctx context.Context, actor *memberships.Membership) ([]InvitationDTO, error)
	Resend(ctx context.Context, actor *memberships.Membership, invitationID uuid.UUID) (*InvitationDTO, error)
	Revoke(ctx context.Context, actor *memberships.Membership, invitationID uuid.UUID) error
	Accept(ctx context.Context, userID uuid.UUID, token string) (*AcceptResultDTO, error)
}

type service struct {
	repo        invitationRepository
	users       usersReader
	memberships membershipsReader
	providers   providersReader
	tx          txRunner
	mail        mailer.Mailer
	audit       auditRecorder
	notify      notifier
	cfg         config.InvitationsConfig
	logg        *logger.Logger
}

// NewService wires the invitation service.
func NewService(
	repo invitationRepository,
	users usersReader,
	membershipsRepo membershipsReader,
	providersRepo providersReader,
	tx txRunner,
	mail mailer.Mailer,
	auditor auditRecorder,
	notify notifier,
	cfg config.InvitationsConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invitation repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		users:       users,
		memberships: membershipsRepo,
		providers:   providersRepo,
		tx:          tx,
		mail:        mail,
		audit:       auditor,
		notify:      notify,
		cfg:         cfg,
		logg:        logg,
	}, nil
}

// CreateInvitationInput captures the data required to invite a member.
type CreateInvitationInput struct {
	Email string
	Role  enums.MemberRole
}

func (s *service) Create(ctx context.Context, actor *memberships.Membership, input CreateInvitationInput) (*InvitationDTO, error) {
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

	// An existing active member or a live invite both block a new invite.
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		if _, err := s.memberships.GetActiveMembership(ctx, existing.ID, actor.ProviderID); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	if _, err := s.repo.FindPendingByEmail(ctx, actor.ProviderID, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending invitation already exists for this email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending invitations")
	}

	token, err := generateToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
	}

	now := time.Now().UTC()
	invitation := &models.Invitation{
		ProviderID:      actor.ProviderID,
		Email:           email,
		Role:            input.Role,
		Token:           token,
		ExpiresAt:       now.Add(s.cfg.TTL()),
		InvitedByUserID: actor.UserID,
		LastSentAt:      &now,
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invitation already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
	}

	s.sendInviteEmail(ctx, invitation)
	s.recordAudit(ctx, actor, enums.AuditActionMemberInvited, invitation, map[string]any{
		"email": email,
		"role":  string(input.Role),
	})
	if s.notify != nil {
		s.notify.Enqueue(ctx, notifications.EnqueueInput{
			ProviderID: actor.ProviderID,
			Type:       enums.NotificationTypeInvitationSent,
			Title:      "Invitation sent",
			Message:    fmt.Sprintf("%s was invited as %s", email, input.Role),
		})
	}

	return ToDTO(invitation), nil
}

func (s *service) List(ctx context.Context, actor *memberships.Membership) ([]InvitationDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanInviteMembers {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	rows, err := s.repo.ListByProvider(ctx, actor.ProviderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invitations")
	}
	return toDTOs(rows), nil
}

func (s *service) Resend(ctx context.Context, actor *memberships.Membership, invitationID uuid.UUID) (*InvitationDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanInviteMembers {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	invitation, err := s.repo.FindByID(ctx, actor.ProviderID, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if invitation.AcceptedAt != nil || invitation.RevokedAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeGone, "invitation is no longer valid")
	}

	token, err := generateToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.TTL())
	if err := s.repo.MarkResent(ctx, invitation.ID, token, expiresAt, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invitation resent")
	}

	invitation.Token = token
	invitation.ExpiresAt = expiresAt
	invitation.LastSentAt = &now
	invitation.ResendCount++

	s.sendInviteEmail(ctx, invitation)
	s.recordAudit(ctx, actor, enums.AuditActionInvitationResent, invitation, map[string]any{
		"email":        invitation.Email,
		"resend_count": invitation.ResendCount,
	})

	return ToDTO(invitation), nil
}

func (s *service) Revoke(ctx context.Context, actor *memberships.Membership, invitationID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanInviteMembers {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	invitation, err := s.repo.FindByID(ctx, actor.ProviderID, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if invitation.AcceptedAt != nil || invitation.RevokedAt != nil {
		return pkgerrors.New(pkgerrors.CodeGone, "invitation is no longer valid")
	}

	if err := s.repo.Revoke(ctx, actor.ProviderID, invitationID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke invitation")
	}
	return nil
}

// Accept redeems an invitation token for the authenticated user. The token
// read is deliberately unscoped; everything after it is validated against
// the loaded row. The membership insert and the accepted_at stamp commit in
// one transaction.
func (s *service) Accept(ctx context.Context, userID uuid.UUID, token string) (*AcceptResultDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	invitation, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}

	now := time.Now().UTC()
	if invitation.AcceptedAt != nil || invitation.RevokedAt != nil || invitation.IsExpired(now) {
		return nil, pkgerrors.New(pkgerrors.CodeGone, "invitation is no longer valid")
	}
	if !strings.EqualFold(invitation.Email, user.Email) {
		// Generic message; never confirm which email the invite targets.
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you cannot accept this invitation")
	}

	var membership *models.ProviderMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.AcceptTx(tx, invitation.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp invitation")
		}
		if affected == 0 {
			// A concurrent accept won the race.
			return pkgerrors.New(pkgerrors.CodeGone, "invitation is no longer valid")
		}

		membership, err = s.repo.CreateMembershipTx(tx, invitation, userID, now)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_memberships_one_active") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user is already a member")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}

		if s.audit != nil {
			actorProvider := invitation.ProviderID
			event := audit.Event{
				ProviderID: invitation.ProviderID,
				Action:     enums.AuditActionInvitationAccept,
				EntityType: enums.AuditEntityInvitation,
				EntityID:   &invitation.ID,
				Actor: &audit.ActorRef{
					UserID:     userID,
					ProviderID: &actorProvider,
					Role:       string(invitation.Role),
				},
				Data: map[string]any{
					"membership_id": membership.ID.String(),
					"role":          string(invitation.Role),
				},
			}
			if err := s.audit.RecordTx(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record accept")
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invitation")
	}

	if s.notify != nil {
		s.notify.Enqueue(ctx, notifications.EnqueueInput{
			ProviderID: invitation.ProviderID,
			Type:       enums.NotificationTypeMemberJoined,
			Title:      "New member joined",
			Message:    fmt.Sprintf("%s %s accepted their invitation", user.FirstName, user.LastName),
		})
	}

	return &AcceptResultDTO{
		MembershipID: membership.ID,
		ProviderID:   membership.ProviderID,
		Role:         membership.Role,
		JoinedAt:     now,
	}, nil
}

func (s *service) sendInviteEmail(ctx context.Context, invitation *models.Invitation) {
	if s.mail == nil {
		return
	}

	providerName := ""
	if s.providers != nil {
		if provider, err := s.providers.FindByID(ctx, invitation.ProviderID); err == nil {
			providerName = provider.Name
		}
	}

	email := mailer.InvitationEmail{
		ToEmail:      invitation.Email,
		ProviderName: providerName,
		Role:         string(invitation.Role),
		Token:        invitation.Token,
	}
	if err := s.mail.SendInvitation(ctx, email); err != nil && s.logg != nil {
		fields := map[string]any{
			"invitation_id": invitation.ID.String(),
			"error":         err.Error(),
		}
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invitation email failed")
	}
}

func (s *service) recordAudit(ctx context.Context, actor *memberships.Membership, action enums.AuditAction, invitation *models.Invitation, data map[string]any) {
	if s.audit == nil {
		return
	}
	providerID := actor.ProviderID
	s.audit.Record(ctx, audit.Event{
		ProviderID: providerID,
		Action:     action,
		EntityType: enums.AuditEntityInvitation,
		EntityID:   &invitation.ID,
		Actor: &audit.ActorRef{
			UserID:     actor.UserID,
			ProviderID: &providerID,
			Role:       string(actor.Role),
		},
		Data: data,
	})
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
