package shifts

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// ShiftDTO is the transport shape for a shift.
type ShiftDTO struct {
	ID             uuid.UUID         `json:"id"`
	BookingID      uuid.UUID         `json:"booking_id"`
	MembershipID   uuid.UUID         `json:"membership_id"`
	TeamID         *uuid.UUID        `json:"team_id,omitempty"`
	ScheduledStart *time.Time        `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time        `json:"scheduled_end,omitempty"`
	ActualStart    *time.Time        `json:"actual_start,omitempty"`
	ActualEnd      *time.Time        `json:"actual_end,omitempty"`
	Status         enums.ShiftStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func ToDTO(s *models.Shift) *ShiftDTO {
	if s == nil {
		return nil
	}

	return &ShiftDTO{
		ID:             s.ID,
		BookingID:      s.BookingID,
		MembershipID:   s.MembershipID,
		TeamID:         s.TeamID,
		ScheduledStart: s.ScheduledStart,
		ScheduledEnd:   s.ScheduledEnd,
		ActualStart:    s.ActualStart,
		ActualEnd:      s.ActualEnd,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toDTOs(rows []models.Shift) []ShiftDTO {
	out := make([]ShiftDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
