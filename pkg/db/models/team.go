package models

import (
	"time"

	"github.com/google/uuid"
)

// Team groups members that work events together; MaxConcurrentEvents caps
// how many bookings the team can hold on one event date.
type Team struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID          uuid.UUID `gorm:"column:provider_id;type:uuid;not null"`
	Name                string    `gorm:"column:name;not null"`
	Description         *string   `gorm:"column:description"`
	MaxConcurrentEvents int       `gorm:"column:max_concurrent_events;not null;default:1"`
	IsActive            bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
