package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to providers.
// RecipientUserID narrows delivery to one member when set.
type Notification struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID      uuid.UUID              `gorm:"type:uuid;not null"`
	RecipientUserID *uuid.UUID             `gorm:"column:recipient_user_id;type:uuid"`
	Type            enums.NotificationType `gorm:"type:notification_type;not null"`
	Title           string                 `gorm:"type:text;not null"`
	Message         string                 `gorm:"type:text;not null"`
	Link            *string                `gorm:"type:text"`
	ReadAt          *time.Time             `gorm:"type:timestamptz"`
	CreatedAt       time.Time              `gorm:"type:timestamptz;default:now()"`
}
