package shifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type shiftRepository interface {
	ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Shift, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	Transition(ctx context.Context, id uuid.UUID, from, to enums.ShiftStatus, stampColumn string, at time.Time) (int64, error)
}

// Service covers a member's own shift operations.
type Service interface {
	ListMine(ctx context.Context, actor *memberships.Membership) ([]ShiftDTO, error)
	CheckIn(ctx context.Context, actor *memberships.Membership, shiftID uuid.UUID) (*ShiftDTO, error)
	CheckOut(ctx context.Context, actor *memberships.Membership, shiftID uuid.UUID) (*ShiftDTO, error)
}

type service struct {
	repo shiftRepository
}

// NewService wires the shifts service.
func NewService(repo shiftRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shifts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListMine(ctx context.Context, actor *memberships.Membership) ([]ShiftDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	rows, err := s.repo.ListForMembership(ctx, actor.MemberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shifts")
	}
	return toDTOs(rows), nil
}

// CheckIn stamps actual_start and moves the shift to checked_in. Only a
// scheduled shift owned by the caller can check in.
func (s *service) CheckIn(ctx context.Context, actor *memberships.Membership, shiftID uuid.UUID) (*ShiftDTO, error) {
	return s.transition(ctx, actor, shiftID, enums.ShiftStatusScheduled, enums.ShiftStatusCheckedIn, "actual_start")
}

// CheckOut stamps actual_end and moves the shift to checked_out.
func (s *service) CheckOut(ctx context.Context, actor *memberships.Membership, shiftID uuid.UUID) (*ShiftDTO, error) {
	return s.transition(ctx, actor, shiftID, enums.ShiftStatusCheckedIn, enums.ShiftStatusCheckedOut, "actual_end")
}

func (s *service) transition(ctx context.Context, actor *memberships.Membership, shiftID uuid.UUID, from, to enums.ShiftStatus, stampColumn string) (*ShiftDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if shiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}

	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shift")
	}
	if shift.MembershipID != actor.MemberID {
		// Other members' shifts read as not found.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
	}
	if !shift.Status.CanTransitionTo(to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move shift from %s to %s", shift.Status, to))
	}

	now := time.Now().UTC()
	affected, err := s.repo.Transition(ctx, shiftID, from, to, stampColumn, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shift")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shift status changed concurrently")
	}

	shift.Status = to
	switch stampColumn {
	case "actual_start":
		shift.ActualStart = &now
	case "actual_end":
		shift.ActualEnd = &now
	}
	return ToDTO(shift), nil
}
