package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who performed the audited action.
type ActorRef struct {
	UserID     uuid.UUID  `json:"userId"`
	ProviderID *uuid.UUID `json:"providerId,omitempty"`
	Role       string     `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in audit_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
