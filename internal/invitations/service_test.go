package invitations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/internal/notifications"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/mailer"
)

type stubInvitationRepo struct {
	created       *models.Invitation
	byID          *models.Invitation
	byToken       *models.Invitation
	pendingEmail  *models.Invitation
	acceptRows    int64
	acceptCalls   int
	resent        bool
	revoked       bool
	membership    *models.ProviderMembership
	membershipErr error
}

func (s *stubInvitationRepo) Create(ctx context.Context, invitation *models.Invitation) error {
	invitation.ID = uuid.New()
	s.created = invitation
	return nil
}

func (s *stubInvitationRepo) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Invitation, error) {
	if s.byID == nil || s.byID.ID != id || s.byID.ProviderID != providerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.byID
	return &copied, nil
}

func (s *stubInvitationRepo) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	if s.byToken == nil || s.byToken.Token != token {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.byToken
	return &copied, nil
}

func (s *stubInvitationRepo) FindPendingByEmail(ctx context.Context, providerID uuid.UUID, email string) (*models.Invitation, error) {
	if s.pendingEmail == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.pendingEmail, nil
}

func (s *stubInvitationRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Invitation, error) {
	if s.byID == nil {
		return nil, nil
	}
	return []models.Invitation{*s.byID}, nil
}

func (s *stubInvitationRepo) MarkResent(ctx context.Context, id uuid.UUID, token string, expiresAt, sentAt time.Time) error {
	s.resent = true
	return nil
}

func (s *stubInvitationRepo) Revoke(ctx context.Context, providerID, id uuid.UUID, at time.Time) error {
	s.revoked = true
	return nil
}

func (s *stubInvitationRepo) AcceptTx(tx *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	s.acceptCalls++
	return s.acceptRows, nil
}

func (s *stubInvitationRepo) CreateMembershipTx(tx *gorm.DB, invitation *models.Invitation, userID uuid.UUID, at time.Time) (*models.ProviderMembership, error) {
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	if s.membership != nil {
		return s.membership, nil
	}
	return &models.ProviderMembership{
		ID:         uuid.New(),
		ProviderID: invitation.ProviderID,
		UserID:     userID,
		Role:       invitation.Role,
		Status:     enums.MembershipStatusActive,
	}, nil
}

type stubUsersReader struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUsersReader) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersReader) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubMembershipsReader struct {
	active map[uuid.UUID]*models.ProviderMembership
}

func (s *stubMembershipsReader) GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error) {
	if m, ok := s.active[userID]; ok && m.ProviderID == providerID {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubProvidersReader struct {
	provider *models.Provider
}

func (s *stubProvidersReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	if s.provider == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.provider, nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubMailer struct {
	sent []mailer.InvitationEmail
}

func (s *stubMailer) SendInvitation(ctx context.Context, email mailer.InvitationEmail) error {
	s.sent = append(s.sent, email)
	return nil
}

type recordingAuditor struct {
	events   []audit.Event
	txEvents []audit.Event
}

func (r *recordingAuditor) Record(ctx context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func (r *recordingAuditor) RecordTx(ctx context.Context, tx *gorm.DB, event audit.Event) error {
	r.txEvents = append(r.txEvents, event)
	return nil
}

type recordingNotifier struct {
	inputs []notifications.EnqueueInput
}

func (r *recordingNotifier) Enqueue(ctx context.Context, input notifications.EnqueueInput) {
	r.inputs = append(r.inputs, input)
}

type inviteFixture struct {
	repo        *stubInvitationRepo
	users       *stubUsersReader
	memberships *stubMembershipsReader
	tx          *stubTxRunner
	mail        *stubMailer
	audit       *recordingAuditor
	notify      *recordingNotifier
	svc         Service
}

func newInviteFixture(t *testing.T) *inviteFixture {
	t.Helper()
	f := &inviteFixture{
		repo:        &stubInvitationRepo{},
		users:       &stubUsersReader{users: map[uuid.UUID]*models.User{}},
		memberships: &stubMembershipsReader{active: map[uuid.UUID]*models.ProviderMembership{}},
		tx:          &stubTxRunner{},
		mail:        &stubMailer{},
		audit:       &recordingAuditor{},
		notify:      &recordingNotifier{},
	}
	svc, err := NewService(
		f.repo,
		f.users,
		f.memberships,
		&stubProvidersReader{provider: &models.Provider{Name: "Kusina Maria"}},
		f.tx,
		f.mail,
		f.audit,
		f.notify,
		config.InvitationsConfig{TTLHours: 168},
		nil,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func adminMembership(providerID uuid.UUID) *memberships.Membership {
	return &memberships.Membership{
		MemberID:     uuid.New(),
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleAdmin,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleAdmin),
	}
}

func staffMembership(providerID uuid.UUID) *memberships.Membership {
	return &memberships.Membership{
		MemberID:     uuid.New(),
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleStaff,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleStaff),
	}
}

func TestCreateInvitation(t *testing.T) {
	f := newInviteFixture(t)
	providerID := uuid.New()
	actor := adminMembership(providerID)

	dto, err := f.svc.Create(context.Background(), actor, CreateInvitationInput{
		Email: "  Chef@Example.PH ",
		Role:  enums.MemberRoleStaff,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.repo.created == nil {
		t.Fatal("expected an invitation row")
	}
	if f.repo.created.Email != "chef@example.ph" {
		t.Fatalf("email not normalized: %q", f.repo.created.Email)
	}
	if f.repo.created.Token == "" {
		t.Fatal("expected a token")
	}
	if dto.Email != "chef@example.ph" {
		t.Fatalf("unexpected dto email %q", dto.Email)
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.mail.sent))
	}
	if f.mail.sent[0].ProviderName != "Kusina Maria" {
		t.Fatalf("unexpected provider name %q", f.mail.sent[0].ProviderName)
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Action != enums.AuditActionMemberInvited {
		t.Fatalf("expected member.invited audit event, got %+v", f.audit.events)
	}
	if len(f.notify.inputs) != 1 || f.notify.inputs[0].Type != enums.NotificationTypeInvitationSent {
		t.Fatalf("expected invitation_sent notification, got %+v", f.notify.inputs)
	}
}

func TestCreateInvitationForbiddenForStaff(t *testing.T) {
	f := newInviteFixture(t)
	actor := staffMembership(uuid.New())

	_, err := f.svc.Create(context.Background(), actor, CreateInvitationInput{
		Email: "new@example.ph",
		Role:  enums.MemberRoleStaff,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if f.repo.created != nil {
		t.Fatal("no row should be written")
	}
}

func TestCreateInvitationConflictsWithActiveMember(t *testing.T) {
	f := newInviteFixture(t)
	providerID := uuid.New()
	actor := adminMembership(providerID)

	userID := uuid.New()
	f.users.users[userID] = &models.User{ID: userID, Email: "chef@example.ph"}
	f.memberships.active[userID] = &models.ProviderMembership{UserID: userID, ProviderID: providerID}

	_, err := f.svc.Create(context.Background(), actor, CreateInvitationInput{
		Email: "chef@example.ph",
		Role:  enums.MemberRoleStaff,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateInvitationConflictsWithPendingInvite(t *testing.T) {
	f := newInviteFixture(t)
	actor := adminMembership(uuid.New())
	f.repo.pendingEmail = &models.Invitation{ID: uuid.New()}

	_, err := f.svc.Create(context.Background(), actor, CreateInvitationInput{
		Email: "chef@example.ph",
		Role:  enums.MemberRoleStaff,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAcceptInvitation(t *testing.T) {
	f := newInviteFixture(t)
	providerID := uuid.New()
	userID := uuid.New()
	f.users.users[userID] = &models.User{ID: userID, Email: "chef@example.ph", FirstName: "Maria", LastName: "Santos"}
	f.repo.byToken = &models.Invitation{
		ID:         uuid.New(),
		ProviderID: providerID,
		Email:      "Chef@Example.PH",
		Role:       enums.MemberRoleStaff,
		Token:      "tok-1",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	f.repo.acceptRows = 1

	result, err := f.svc.Accept(context.Background(), userID, "tok-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if result.ProviderID != providerID {
		t.Fatalf("unexpected provider %s", result.ProviderID)
	}
	if result.Role != enums.MemberRoleStaff {
		t.Fatalf("unexpected role %s", result.Role)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}
	if len(f.audit.txEvents) != 1 || f.audit.txEvents[0].Action != enums.AuditActionInvitationAccept {
		t.Fatalf("expected transactional accept audit, got %+v", f.audit.txEvents)
	}
	if len(f.notify.inputs) != 1 || f.notify.inputs[0].Type != enums.NotificationTypeMemberJoined {
		t.Fatalf("expected member_joined notification, got %+v", f.notify.inputs)
	}
}

func TestAcceptInvitationSecondAcceptGone(t *testing.T) {
	f := newInviteFixture(t)
	userID := uuid.New()
	f.users.users[userID] = &models.User{ID: userID, Email: "chef@example.ph"}
	f.repo.byToken = &models.Invitation{
		ID:        uuid.New(),
		Email:     "chef@example.ph",
		Token:     "tok-1",
		Role:      enums.MemberRoleStaff,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	// the stamped update loses the race
	f.repo.acceptRows = 0

	_, err := f.svc.Accept(context.Background(), userID, "tok-1")
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeGone {
		t.Fatalf("expected gone, got %v", err)
	}
}

func TestAcceptInvitationAlreadyAcceptedGone(t *testing.T) {
	f := newInviteFixture(t)
	userID := uuid.New()
	f.users.users[userID] = &models.User{ID: userID, Email: "chef@example.ph"}
	accepted := time.Now().Add(-time.Hour)
	f.repo.byToken = &models.Invitation{
		ID:         uuid.New(),
		Email:      "chef@example.ph",
		Token:      "tok-1",
		Role:       enums.MemberRoleStaff,
		ExpiresAt:  time.Now().Add(time.Hour),
		AcceptedAt: &accepted,
	}

	_, err := f.svc.Accept(context.Background(), userID, "tok-1")
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeGone {
		t.Fatalf("expected gone, got %v", err)
	}
	if f.tx.calls != 0 {
		t.Fatal("no transaction should run for a dead invitation")
	}
}

func TestAcceptInvitationExpiredGone(t *testing.T) {
	f := newInviteFixture(t)
	userID := uuid.New()
	f.users.users[userID] = &models.User{ID: userID, Email: "chef@example.ph"}
	f.repo.byToken = &models.Invitation{
		ID:        uuid.New(),
		Email:     "chef@example.ph",
		Token:     "tok-1",
		Role:      enums.MemberRoleStaff,
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := f.svc.Accept(context.Background(), userID, "tok-1")
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeGone {
		t.Fatalf("expected gone, got %v", err)
	}
}

func TestAcceptInvitationEmailMismatchForbidden(t *testing.T) {
	f := newInviteFixture(t)
	userID := uuid.New()
	f.users.users[userID] = &models.User{ID: userID, Email: "other@example.ph"}
	f.repo.byToken = &models.Invitation{
		ID:        uuid.New(),
		Email:     "chef@example.ph",
		Token:     "tok-1",
		Role:      enums.MemberRoleStaff,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err := f.svc.Accept(context.Background(), userID, "tok-1")
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	// the message must not leak the invitation's target email
	if strings.Contains(strings.ToLower(typed.Error()), "chef@example.ph") {
		t.Fatalf("message leaks invite email: %q", typed.Error())
	}
	if f.tx.calls != 0 {
		t.Fatal("no transaction should run on mismatch")
	}
}

func TestResendRevokedInvitationGone(t *testing.T) {
	f := newInviteFixture(t)
	providerID := uuid.New()
	actor := adminMembership(providerID)
	revoked := time.Now().Add(-time.Hour)
	f.repo.byID = &models.Invitation{
		ID:         uuid.New(),
		ProviderID: providerID,
		Email:      "chef@example.ph",
		RevokedAt:  &revoked,
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	_, err := f.svc.Resend(context.Background(), actor, f.repo.byID.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeGone {
		t.Fatalf("expected gone, got %v", err)
	}
	if f.repo.resent {
		t.Fatal("resend must not touch the row")
	}
}

func TestResendRotatesTokenAndExpiry(t *testing.T) {
	f := newInviteFixture(t)
	providerID := uuid.New()
	actor := adminMembership(providerID)
	f.repo.byID = &models.Invitation{
		ID:         uuid.New(),
		ProviderID: providerID,
		Email:      "chef@example.ph",
		Role:       enums.MemberRoleStaff,
		Token:      "old-token",
		ExpiresAt:  time.Now().Add(-time.Hour), // lapsed but still pending
	}

	dto, err := f.svc.Resend(context.Background(), actor, f.repo.byID.ID)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !f.repo.resent {
		t.Fatal("expected the row to be stamped")
	}
	if dto.ExpiresAt.Before(time.Now()) {
		t.Fatal("expiry should be pushed out")
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.mail.sent))
	}
	if f.mail.sent[0].Token == "old-token" {
		t.Fatal("token should be rotated")
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Action != enums.AuditActionInvitationResent {
		t.Fatalf("expected invitation.resent audit event, got %+v", f.audit.events)
	}
}

func TestRevokeInvitation(t *testing.T) {
	f := newInviteFixture(t)
	providerID := uuid.New()
	actor := adminMembership(providerID)
	f.repo.byID = &models.Invitation{
		ID:         uuid.New(),
		ProviderID: providerID,
		Email:      "chef@example.ph",
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	if err := f.svc.Revoke(context.Background(), actor, f.repo.byID.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !f.repo.revoked {
		t.Fatal("expected revoke to hit the repo")
	}
}
