package shifts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type stubShiftRepo struct {
	byID        map[uuid.UUID]*models.Shift
	mine        []models.Shift
	transitions []enums.ShiftStatus
	rows        int64
}

func newStubShiftRepo() *stubShiftRepo {
	return &stubShiftRepo{byID: map[uuid.UUID]*models.Shift{}, rows: 1}
}

func (s *stubShiftRepo) ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Shift, error) {
	return s.mine, nil
}

func (s *stubShiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	if shift, ok := s.byID[id]; ok {
		copied := *shift
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubShiftRepo) Transition(ctx context.Context, id uuid.UUID, from, to enums.ShiftStatus, stampColumn string, at time.Time) (int64, error) {
	s.transitions = append(s.transitions, to)
	return s.rows, nil
}

func newShiftsFixture(t *testing.T) (*stubShiftRepo, Service) {
	t.Helper()
	repo := newStubShiftRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return repo, svc
}

func shiftActor() *memberships.Membership {
	return &memberships.Membership{
		MemberID:     uuid.New(),
		ProviderID:   uuid.New(),
		UserID:       uuid.New(),
		Role:         enums.MemberRoleStaff,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleStaff),
	}
}

func TestCheckIn(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	actor := shiftActor()
	shift := &models.Shift{ID: uuid.New(), MembershipID: actor.MemberID, Status: enums.ShiftStatusScheduled}
	repo.byID[shift.ID] = shift

	dto, err := svc.CheckIn(context.Background(), actor, shift.ID)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if dto.Status != enums.ShiftStatusCheckedIn {
		t.Fatalf("status %s, want checked_in", dto.Status)
	}
	if dto.ActualStart == nil {
		t.Fatal("actual_start must be stamped")
	}
}

func TestCheckInFromCheckedInRejected(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	actor := shiftActor()
	shift := &models.Shift{ID: uuid.New(), MembershipID: actor.MemberID, Status: enums.ShiftStatusCheckedIn}
	repo.byID[shift.ID] = shift

	_, err := svc.CheckIn(context.Background(), actor, shift.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.transitions) != 0 {
		t.Fatal("no write for an invalid transition")
	}
}

func TestCheckOut(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	actor := shiftActor()
	shift := &models.Shift{ID: uuid.New(), MembershipID: actor.MemberID, Status: enums.ShiftStatusCheckedIn}
	repo.byID[shift.ID] = shift

	dto, err := svc.CheckOut(context.Background(), actor, shift.ID)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if dto.Status != enums.ShiftStatusCheckedOut {
		t.Fatalf("status %s, want checked_out", dto.Status)
	}
	if dto.ActualEnd == nil {
		t.Fatal("actual_end must be stamped")
	}
}

func TestCheckOutFromScheduledRejected(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	actor := shiftActor()
	shift := &models.Shift{ID: uuid.New(), MembershipID: actor.MemberID, Status: enums.ShiftStatusScheduled}
	repo.byID[shift.ID] = shift

	_, err := svc.CheckOut(context.Background(), actor, shift.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCheckInForeignShiftNotFound(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	actor := shiftActor()
	shift := &models.Shift{ID: uuid.New(), MembershipID: uuid.New(), Status: enums.ShiftStatusScheduled}
	repo.byID[shift.ID] = shift

	_, err := svc.CheckIn(context.Background(), actor, shift.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign shifts must read as not found, got %v", err)
	}
}

func TestCheckInConcurrentLoss(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	repo.rows = 0
	actor := shiftActor()
	shift := &models.Shift{ID: uuid.New(), MembershipID: actor.MemberID, Status: enums.ShiftStatusScheduled}
	repo.byID[shift.ID] = shift

	_, err := svc.CheckIn(context.Background(), actor, shift.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestListMine(t *testing.T) {
	repo, svc := newShiftsFixture(t)
	actor := shiftActor()
	repo.mine = []models.Shift{{ID: uuid.New(), MembershipID: actor.MemberID}}

	rows, err := svc.ListMine(context.Background(), actor)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(rows))
	}
}
