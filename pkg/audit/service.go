package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// Event is one audited domain action queued for the side channel.
type Event struct {
	ProviderID uuid.UUID
	Action     enums.AuditAction
	EntityType enums.AuditEntityType
	EntityID   *uuid.UUID
	Actor      *ActorRef
	Data       interface{}
	Version    int
	OccurredAt time.Time
}

type recorderRepo interface {
	Insert(event models.AuditEvent) error
	InsertTx(tx *gorm.DB, event models.AuditEvent) error
}

type Service struct {
	repo recorderRepo
	logg *logger.Logger
}

func NewService(repo recorderRepo, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Record appends an audit event outside any transaction. Failures are
// logged and swallowed so the triggering request never fails on audit.
func (s *Service) Record(ctx context.Context, event Event) {
	if s == nil || s.repo == nil {
		return
	}
	row, err := s.buildRow(event)
	if err != nil {
		s.warn(ctx, event, err)
		return
	}
	if err := s.repo.Insert(row); err != nil {
		s.warn(ctx, event, err)
	}
}

// RecordTx appends an audit event inside the caller's transaction; used when
// the audit row must commit or roll back with the domain write.
func (s *Service) RecordTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	row, err := s.buildRow(event)
	if err != nil {
		return err
	}
	return s.repo.InsertTx(tx, row)
}

func (s *Service) buildRow(event Event) (models.AuditEvent, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return models.AuditEvent{}, err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if event.Version == 0 {
		event.Version = 1
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       payload,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return models.AuditEvent{}, err
	}

	var actorID *uuid.UUID
	if event.Actor != nil {
		id := event.Actor.UserID
		actorID = &id
	}

	return models.AuditEvent{
		ProviderID:  event.ProviderID,
		ActorUserID: actorID,
		Action:      event.Action,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Payload:     json.RawMessage(payloadJSON),
	}, nil
}

func (s *Service) warn(ctx context.Context, event Event, err error) {
	if s.logg == nil {
		return
	}
	fields := map[string]any{
		"action":      event.Action,
		"entity_type": event.EntityType,
		"provider_id": event.ProviderID.String(),
		"error":       err.Error(),
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "audit event dropped")
}
