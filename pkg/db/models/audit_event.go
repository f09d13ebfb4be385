package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// AuditEvent is one append-only row in the audit side channel. Rows are
// written fire-and-forget by domain services and shipped to Pub/Sub by the
// publisher command.
type AuditEvent struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID   uuid.UUID             `gorm:"column:provider_id;type:uuid;not null"`
	ActorUserID  *uuid.UUID            `gorm:"column:actor_user_id;type:uuid"`
	Action       enums.AuditAction     `gorm:"column:action;type:audit_action;not null"`
	EntityType   enums.AuditEntityType `gorm:"column:entity_type;type:audit_entity_type;not null"`
	EntityID     *uuid.UUID            `gorm:"column:entity_id;type:uuid"`
	Payload      json.RawMessage       `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	PublishedAt  *time.Time            `gorm:"column:published_at"`
	AttemptCount int                   `gorm:"column:attempt_count;not null;default:0"`
	LastError    *string               `gorm:"column:last_error"`
}
