package teams

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/internal/notifications"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type stubAssignTeams struct {
	team   *models.Team
	roster []uuid.UUID
}

func (s *stubAssignTeams) FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.Team, error) {
	if s.team == nil || s.team.ID != id || s.team.ProviderID != providerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.team, nil
}

func (s *stubAssignTeams) ActiveRosterTx(tx *gorm.DB, teamID uuid.UUID) ([]uuid.UUID, error) {
	return s.roster, nil
}

type stubAssignBookings struct {
	booking    *models.Booking
	busyCount  int64
	setTeam    []uuid.UUID
	setCleared bool
}

func (s *stubAssignBookings) FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.Booking, error) {
	if s.booking == nil || s.booking.ID != id || s.booking.ProviderID != providerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.booking
	return &copied, nil
}

func (s *stubAssignBookings) CountTeamBookingsOnDateTx(tx *gorm.DB, teamID uuid.UUID, eventDate time.Time, excludeBookingID uuid.UUID) (int64, error) {
	return s.busyCount, nil
}

func (s *stubAssignBookings) SetTeamTx(tx *gorm.DB, bookingID uuid.UUID, teamID *uuid.UUID) error {
	if teamID == nil {
		s.setCleared = true
		return nil
	}
	s.setTeam = append(s.setTeam, *teamID)
	return nil
}

type stubAssignShifts struct {
	existing []uuid.UUID
	created  []models.Shift
}

func (s *stubAssignShifts) MembershipIDsForBookingTx(tx *gorm.DB, bookingID uuid.UUID) ([]uuid.UUID, error) {
	return s.existing, nil
}

func (s *stubAssignShifts) CreateTx(tx *gorm.DB, shift *models.Shift) error {
	s.created = append(s.created, *shift)
	return nil
}

type stubAssignTx struct{ calls int }

func (s *stubAssignTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type txAuditor struct{ events []audit.Event }

func (a *txAuditor) RecordTx(ctx context.Context, tx *gorm.DB, event audit.Event) error {
	a.events = append(a.events, event)
	return nil
}

type assignNotifier struct{ inputs []notifications.EnqueueInput }

func (n *assignNotifier) Enqueue(ctx context.Context, input notifications.EnqueueInput) {
	n.inputs = append(n.inputs, input)
}

type assignFixture struct {
	teams    *stubAssignTeams
	bookings *stubAssignBookings
	shifts   *stubAssignShifts
	tx       *stubAssignTx
	auditor  *txAuditor
	notify   *assignNotifier
	svc      AssignmentService
}

func newAssignFixture(t *testing.T) *assignFixture {
	t.Helper()
	f := &assignFixture{
		teams:    &stubAssignTeams{},
		bookings: &stubAssignBookings{},
		shifts:   &stubAssignShifts{},
		tx:       &stubAssignTx{},
		auditor:  &txAuditor{},
		notify:   &assignNotifier{},
	}
	svc, err := NewAssignmentService(f.teams, f.bookings, f.shifts, f.tx, f.auditor, f.notify)
	if err != nil {
		t.Fatalf("NewAssignmentService: %v", err)
	}
	f.svc = svc
	return f
}

func supervisorActor(providerID uuid.UUID) *memberships.Membership {
	return &memberships.Membership{
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleAdmin,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleAdmin),
	}
}

func seedAssignment(f *assignFixture, providerID uuid.UUID, maxConcurrent int, roster []uuid.UUID) (*models.Booking, *models.Team) {
	eventDate := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		ID:           uuid.New(),
		ProviderID:   providerID,
		CustomerName: "Liza Cruz",
		EventDate:    &eventDate,
		Status:       enums.BookingStatusConfirmed,
	}
	team := &models.Team{
		ID:                  uuid.New(),
		ProviderID:          providerID,
		Name:                "Events crew",
		MaxConcurrentEvents: maxConcurrent,
		IsActive:            true,
	}
	f.bookings.booking = booking
	f.teams.team = team
	f.teams.roster = roster
	return booking, team
}

func TestAssignTeamCreatesShifts(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	roster := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	booking, team := seedAssignment(f, providerID, 2, roster)

	result, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, &team.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.ShiftsCreated != 3 {
		t.Fatalf("expected 3 shifts, got %d", result.ShiftsCreated)
	}
	if len(f.shifts.created) != 3 {
		t.Fatalf("expected 3 shift rows, got %d", len(f.shifts.created))
	}
	for _, shift := range f.shifts.created {
		if shift.Status != enums.ShiftStatusScheduled {
			t.Fatalf("new shifts start scheduled, got %s", shift.Status)
		}
		if shift.TeamID == nil || *shift.TeamID != team.ID {
			t.Fatal("shift must carry the team")
		}
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != enums.AuditActionBookingAssigned {
		t.Fatalf("expected booking assigned audit event, got %+v", f.auditor.events)
	}
	if len(f.notify.inputs) != 1 || f.notify.inputs[0].Type != enums.NotificationTypeTeamAssigned {
		t.Fatalf("expected team assigned notification, got %+v", f.notify.inputs)
	}
}

func TestAssignTeamCapacityExceededNoShifts(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	booking, team := seedAssignment(f, providerID, 2, []uuid.UUID{uuid.New()})
	f.bookings.busyCount = 2 // already at max

	_, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, &team.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.shifts.created) != 0 {
		t.Fatal("no shifts may be written when capacity is exceeded")
	}
	if len(f.bookings.setTeam) != 0 {
		t.Fatal("the assignment must not be written")
	}
}

func TestAssignTeamRepeatIsIdempotent(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	memberA, memberB := uuid.New(), uuid.New()
	booking, team := seedAssignment(f, providerID, 2, []uuid.UUID{memberA, memberB})
	// first assignment already covered memberA
	f.shifts.existing = []uuid.UUID{memberA}

	result, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, &team.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.ShiftsCreated != 1 {
		t.Fatalf("expected only the missing shift, got %d", result.ShiftsCreated)
	}
	if len(f.shifts.created) != 1 || f.shifts.created[0].MembershipID != memberB {
		t.Fatalf("expected one shift for the uncovered member, got %+v", f.shifts.created)
	}
}

func TestAssignTeamWithoutEventDateSkipsCapacity(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	booking, team := seedAssignment(f, providerID, 1, nil)
	booking.EventDate = nil
	f.bookings.busyCount = 99

	if _, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, &team.ID); err != nil {
		t.Fatalf("assign without event date: %v", err)
	}
}

func TestAssignTeamClearAssignment(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	booking, _ := seedAssignment(f, providerID, 2, []uuid.UUID{uuid.New()})

	result, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, nil)
	if err != nil {
		t.Fatalf("clear assignment: %v", err)
	}
	if !f.bookings.setCleared {
		t.Fatal("expected the team to be cleared")
	}
	if result.ShiftsCreated != 0 || len(f.shifts.created) != 0 {
		t.Fatal("clearing must not create shifts")
	}
	if len(f.notify.inputs) != 0 {
		t.Fatal("clearing must not notify")
	}
}

func TestAssignTeamInactiveTeamRejected(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	booking, team := seedAssignment(f, providerID, 2, nil)
	team.IsActive = false

	_, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, &team.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignTeamForbiddenForStaff(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	staff := &memberships.Membership{
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleStaff,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleStaff),
	}
	booking, team := seedAssignment(f, providerID, 2, nil)

	_, err := f.svc.AssignTeam(context.Background(), staff, booking.ID, &team.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if f.tx.calls != 0 {
		t.Fatal("no transaction for a forbidden caller")
	}
}

func TestAssignTeamCancelledBookingRejected(t *testing.T) {
	f := newAssignFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	booking, team := seedAssignment(f, providerID, 2, nil)
	booking.Status = enums.BookingStatusCancelled

	_, err := f.svc.AssignTeam(context.Background(), actor, booking.ID, &team.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
