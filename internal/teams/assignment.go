package teams

import (
	"context"
	"errors"
	"fmt"
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

type assignmentTeamReader interface {
	FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.Team, error)
	ActiveRosterTx(tx *gorm.DB, teamID uuid.UUID) ([]uuid.UUID, error)
}

type assignmentBookingRepo interface {
	FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.Booking, error)
	CountTeamBookingsOnDateTx(tx *gorm.DB, teamID uuid.UUID, eventDate time.Time, excludeBookingID uuid.UUID) (int64, error)
	SetTeamTx(tx *gorm.DB, bookingID uuid.UUID, teamID *uuid.UUID) error
}

type assignmentShiftRepo interface {
	MembershipIDsForBookingTx(tx *gorm.DB, bookingID uuid.UUID) ([]uuid.UUID, error)
	CreateTx(tx *gorm.DB, shift *models.Shift) error
}

type assignmentTxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type assignmentAuditRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, event audit.Event) error
}

type assignmentNotifier interface {
	Enqueue(ctx context.Context, input notifications.EnqueueInput)
}

// AssignmentService applies and clears team assignments on bookings.
type AssignmentService interface {
	AssignTeam(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID, teamID *uuid.UUID) (*AssignmentResult, error)
}

// AssignmentResult reports the assignment outcome.
type AssignmentResult struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	TeamID        *uuid.UUID `json:"team_id,omitempty"`
	ShiftsCreated int        `json:"shifts_created"`
}

type assignmentService struct {
	teams    assignmentTeamReader
	bookings assignmentBookingRepo
	shifts   assignmentShiftRepo
	tx       assignmentTxRunner
	audit    assignmentAuditRecorder
	notify   assignmentNotifier
}

// NewAssignmentService wires the booking assignment service.
func NewAssignmentService(
	teamsRepo assignmentTeamReader,
	bookingsRepo assignmentBookingRepo,
	shiftsRepo assignmentShiftRepo,
	tx assignmentTxRunner,
	auditor assignmentAuditRecorder,
	notify assignmentNotifier,
) (AssignmentService, error) {
	if teamsRepo == nil || bookingsRepo == nil || shiftsRepo == nil {
		return nil, fmt.Errorf("teams, bookings, and shifts repositories required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &assignmentService{
		teams:    teamsRepo,
		bookings: bookingsRepo,
		shifts:   shiftsRepo,
		tx:       tx,
		audit:    auditor,
		notify:   notify,
	}, nil
}

// AssignTeam attaches the booking to a team. Capacity is checked against the
// team's other bookings on the same event date inside the same transaction
// that writes the assignment; the team row is read FOR UPDATE, so two racing
// assignments serialize on it and cannot both squeeze past the cap. Shift
// creation is idempotent per (booking, member); repeat assignment fills gaps
// only and prior shifts are left in place.
func (s *assignmentService) AssignTeam(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID, teamID *uuid.UUID) (*AssignmentResult, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanAssignBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	result := &AssignmentResult{BookingID: bookingID, TeamID: teamID}
	var booking *models.Booking

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.bookings.FindByIDTx(tx, actor.ProviderID, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return err
		}
		if booking.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking is %s and cannot be assigned", booking.Status))
		}

		if teamID == nil {
			return s.bookings.SetTeamTx(tx, bookingID, nil)
		}

		team, err := s.teams.FindByIDTx(tx, actor.ProviderID, *teamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
			}
			return err
		}
		if !team.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "team is not active")
		}

		if booking.EventDate != nil {
			busy, err := s.bookings.CountTeamBookingsOnDateTx(tx, team.ID, *booking.EventDate, bookingID)
			if err != nil {
				return err
			}
			if busy >= int64(team.MaxConcurrentEvents) {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("team %s is at capacity on %s", team.Name, booking.EventDate.Format("2006-01-02")))
			}
		}

		if err := s.bookings.SetTeamTx(tx, bookingID, teamID); err != nil {
			return err
		}

		created, err := s.createMissingShifts(tx, booking, team)
		if err != nil {
			return err
		}
		result.ShiftsCreated = created

		if s.audit != nil {
			providerID := actor.ProviderID
			event := audit.Event{
				ProviderID: providerID,
				Action:     enums.AuditActionBookingAssigned,
				EntityType: enums.AuditEntityBooking,
				EntityID:   &bookingID,
				Actor: &audit.ActorRef{
					UserID:     actor.UserID,
					ProviderID: &providerID,
					Role:       string(actor.Role),
				},
				Data: map[string]any{
					"team_id":        team.ID.String(),
					"shifts_created": created,
				},
			}
			if err := s.audit.RecordTx(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign team")
	}

	if teamID != nil && s.notify != nil {
		s.notify.Enqueue(ctx, notifications.EnqueueInput{
			ProviderID: actor.ProviderID,
			Type:       enums.NotificationTypeTeamAssigned,
			Title:      "Team assigned",
			Message:    fmt.Sprintf("Booking for %s was assigned to a team", booking.CustomerName),
		})
	}
	return result, nil
}

// createMissingShifts mints a scheduled shift for each active roster member
// who has none for the booking yet.
func (s *assignmentService) createMissingShifts(tx *gorm.DB, booking *models.Booking, team *models.Team) (int, error) {
	roster, err := s.teams.ActiveRosterTx(tx, team.ID)
	if err != nil {
		return 0, err
	}
	existing, err := s.shifts.MembershipIDsForBookingTx(tx, booking.ID)
	if err != nil {
		return 0, err
	}
	covered := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		covered[id] = true
	}

	created := 0
	for _, membershipID := range roster {
		if covered[membershipID] {
			continue
		}
		teamID := team.ID
		shift := &models.Shift{
			BookingID:      booking.ID,
			MembershipID:   membershipID,
			TeamID:         &teamID,
			ScheduledStart: booking.EventDate,
			Status:         enums.ShiftStatusScheduled,
		}
		if err := s.shifts.CreateTx(tx, shift); err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}
