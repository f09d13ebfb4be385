package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

type stubRepo struct {
	inserted []models.AuditEvent
	err      error
}

func (s *stubRepo) Insert(event models.AuditEvent) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, event)
	return nil
}

func (s *stubRepo) InsertTx(tx *gorm.DB, event models.AuditEvent) error {
	return s.Insert(event)
}

func TestRecordWrapsPayloadInEnvelope(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	providerID := uuid.New()
	actorID := uuid.New()
	entityID := uuid.New()

	svc.Record(context.Background(), Event{
		ProviderID: providerID,
		Action:     enums.AuditActionInvitationAccept,
		EntityType: enums.AuditEntityInvitation,
		EntityID:   &entityID,
		Actor:      &ActorRef{UserID: actorID, Role: "staff"},
		Data:       map[string]string{"email": "cook@example.com"},
	})

	if len(repo.inserted) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.inserted))
	}
	row := repo.inserted[0]
	if row.ProviderID != providerID {
		t.Fatalf("provider id not preserved")
	}
	if row.ActorUserID == nil || *row.ActorUserID != actorID {
		t.Fatalf("actor user id not preserved")
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Version != 1 {
		t.Fatalf("expected default version 1, got %d", envelope.Version)
	}
	if envelope.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if envelope.Actor == nil || envelope.Actor.Role != "staff" {
		t.Fatal("actor not carried into envelope")
	}
}

func TestRecordSwallowsRepositoryErrors(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	svc := NewService(repo, nil)

	// must not panic or propagate
	svc.Record(context.Background(), Event{
		ProviderID: uuid.New(),
		Action:     enums.AuditActionMemberInvited,
		EntityType: enums.AuditEntityInvitation,
	})
}

func TestRecordTxRequiresTransaction(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)
	if err := svc.RecordTx(context.Background(), nil, Event{}); err == nil {
		t.Fatal("expected error without transaction")
	}
}
