package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Shift is one member's work slot on a booking. At most one shift exists per
// (booking, membership) pair; repeat team assignment reuses existing rows.
type Shift struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID      uuid.UUID         `gorm:"column:booking_id;type:uuid;not null"`
	MembershipID   uuid.UUID         `gorm:"column:membership_id;type:uuid;not null"`
	TeamID         *uuid.UUID        `gorm:"column:team_id;type:uuid"`
	ScheduledStart *time.Time        `gorm:"column:scheduled_start"`
	ScheduledEnd   *time.Time        `gorm:"column:scheduled_end"`
	ActualStart    *time.Time        `gorm:"column:actual_start"`
	ActualEnd      *time.Time        `gorm:"column:actual_end"`
	Status         enums.ShiftStatus `gorm:"column:status;type:shift_status;not null;default:'scheduled'"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
