package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamMember places a provider membership on a team roster.
type TeamMember struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TeamID       uuid.UUID  `gorm:"column:team_id;type:uuid;not null"`
	MembershipID uuid.UUID  `gorm:"column:membership_id;type:uuid;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	RemovedAt    *time.Time `gorm:"column:removed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
