package locations

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type stubLocationRepo struct {
	rows           []models.ServiceLocation
	upserts        []models.ServiceLocation
	deleted        []uuid.UUID
	deleteMissing  bool
	clearedPrimary bool
	promoted       bool
}

func (s *stubLocationRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceLocation, error) {
	return s.rows, nil
}

func (s *stubLocationRepo) ListByProviderTx(tx *gorm.DB, providerID uuid.UUID) ([]models.ServiceLocation, error) {
	return s.rows, nil
}

func (s *stubLocationRepo) UpsertTx(tx *gorm.DB, location *models.ServiceLocation) error {
	s.upserts = append(s.upserts, *location)
	return nil
}

func (s *stubLocationRepo) DeleteMissingTx(tx *gorm.DB, providerID uuid.UUID, keep []uuid.UUID) error {
	s.deleteMissing = true
	return nil
}

func (s *stubLocationRepo) ClearPrimaryTx(tx *gorm.DB, providerID uuid.UUID) error {
	s.clearedPrimary = true
	return nil
}

func (s *stubLocationRepo) FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.ServiceLocation, error) {
	for i := range s.rows {
		if s.rows[i].ID == id && s.rows[i].ProviderID == providerID {
			copied := s.rows[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLocationRepo) DeleteTx(tx *gorm.DB, providerID, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubLocationRepo) PromoteOldestTx(tx *gorm.DB, providerID uuid.UUID) error {
	s.promoted = true
	return nil
}

func (s *stubLocationRepo) CountTx(tx *gorm.DB, providerID uuid.UUID) (int64, error) {
	return int64(len(s.rows)), nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type captureAuditor struct {
	events []audit.Event
}

func (c *captureAuditor) Record(ctx context.Context, event audit.Event) {
	c.events = append(c.events, event)
}

type locationsFixture struct {
	repo    *stubLocationRepo
	tx      *stubTxRunner
	auditor *captureAuditor
	svc     Service
}

func newLocationsFixture(t *testing.T) *locationsFixture {
	t.Helper()
	f := &locationsFixture{
		repo:    &stubLocationRepo{},
		tx:      &stubTxRunner{},
		auditor: &captureAuditor{},
	}
	svc, err := NewService(f.repo, f.tx, f.auditor)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func ownerActor(providerID uuid.UUID) *memberships.Membership {
	return &memberships.Membership{
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleOwner,
		Status:       enums.MembershipStatusActive,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleOwner),
	}
}

func seedLocation(f *locationsFixture, providerID uuid.UUID, primary bool) models.ServiceLocation {
	row := models.ServiceLocation{
		ID:         uuid.New(),
		ProviderID: providerID,
		Label:      "Main kitchen",
		Line1:      "12 Mabini St",
		City:       "Quezon City",
		Province:   "Metro Manila",
		Country:    "PH",
		IsPrimary:  primary,
	}
	f.repo.rows = append(f.repo.rows, row)
	return row
}

func TestSaveAllRejectsZeroPrimaries(t *testing.T) {
	f := newLocationsFixture(t)
	actor := ownerActor(uuid.New())

	_, err := f.svc.SaveAll(context.Background(), actor, []LocationInput{
		{Label: "A", Line1: "1", City: "QC", Province: "MM"},
		{Label: "B", Line1: "2", City: "QC", Province: "MM"},
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.tx.calls != 0 {
		t.Fatal("nothing may be written for an invalid payload")
	}
}

func TestSaveAllRejectsTwoPrimaries(t *testing.T) {
	f := newLocationsFixture(t)
	actor := ownerActor(uuid.New())

	_, err := f.svc.SaveAll(context.Background(), actor, []LocationInput{
		{Label: "A", Line1: "1", City: "QC", Province: "MM", IsPrimary: true},
		{Label: "B", Line1: "2", City: "QC", Province: "MM", IsPrimary: true},
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.tx.calls != 0 || len(f.repo.upserts) != 0 {
		t.Fatal("nothing may be written for an invalid payload")
	}
}

func TestSaveAllCollectsFieldErrors(t *testing.T) {
	f := newLocationsFixture(t)
	actor := ownerActor(uuid.New())

	_, err := f.svc.SaveAll(context.Background(), actor, []LocationInput{
		{Label: "", Line1: "", City: "QC", Province: "MM", IsPrimary: true},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	// both missing fields must be reported together
	msg := err.Error()
	for _, want := range []string{"label is required", "line1 is required"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestSaveAllWritesInOneTransaction(t *testing.T) {
	f := newLocationsFixture(t)
	providerID := uuid.New()
	actor := ownerActor(providerID)
	existing := seedLocation(f, providerID, true)

	_, err := f.svc.SaveAll(context.Background(), actor, []LocationInput{
		{ID: &existing.ID, Label: "Main kitchen", Line1: "12 Mabini St", City: "Quezon City", Province: "Metro Manila", IsPrimary: false},
		{Label: "Warehouse", Line1: "88 Katipunan Ave", City: "Quezon City", Province: "Metro Manila", IsPrimary: true},
	})
	if err != nil {
		t.Fatalf("save all: %v", err)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}
	if !f.repo.deleteMissing || !f.repo.clearedPrimary {
		t.Fatal("save must prune missing rows and clear the old primary")
	}
	if len(f.repo.upserts) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(f.repo.upserts))
	}
	if f.repo.upserts[1].Country != "PH" {
		t.Fatalf("country should default to PH, got %q", f.repo.upserts[1].Country)
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != enums.AuditActionLocationsSaved {
		t.Fatalf("expected locations saved audit event, got %+v", f.auditor.events)
	}
}

func TestSaveAllUnknownIDRejected(t *testing.T) {
	f := newLocationsFixture(t)
	actor := ownerActor(uuid.New())
	strayID := uuid.New()

	_, err := f.svc.SaveAll(context.Background(), actor, []LocationInput{
		{ID: &strayID, Label: "A", Line1: "1", City: "QC", Province: "MM", IsPrimary: true},
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.upserts) != 0 {
		t.Fatal("no writes for an unknown id")
	}
}

func TestDeleteLastLocationRejected(t *testing.T) {
	f := newLocationsFixture(t)
	providerID := uuid.New()
	actor := ownerActor(providerID)
	only := seedLocation(f, providerID, true)

	err := f.svc.Delete(context.Background(), actor, only.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.repo.deleted) != 0 {
		t.Fatal("last location must not be deleted")
	}
}

func TestDeleteWithTwoLocationsSucceeds(t *testing.T) {
	f := newLocationsFixture(t)
	providerID := uuid.New()
	actor := ownerActor(providerID)
	seedLocation(f, providerID, true)
	secondary := seedLocation(f, providerID, false)

	if err := f.svc.Delete(context.Background(), actor, secondary.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.repo.deleted) != 1 || f.repo.deleted[0] != secondary.ID {
		t.Fatal("expected the secondary location to be deleted")
	}
	if f.repo.promoted {
		t.Fatal("deleting a non-primary must not promote")
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != enums.AuditActionLocationDeleted {
		t.Fatalf("expected location deleted audit event, got %+v", f.auditor.events)
	}
}

func TestDeletePrimaryPromotesOldest(t *testing.T) {
	f := newLocationsFixture(t)
	providerID := uuid.New()
	actor := ownerActor(providerID)
	primary := seedLocation(f, providerID, true)
	seedLocation(f, providerID, false)

	if err := f.svc.Delete(context.Background(), actor, primary.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !f.repo.promoted {
		t.Fatal("deleting the primary must promote the oldest remaining location")
	}
}

func TestDeleteForbiddenForStaff(t *testing.T) {
	f := newLocationsFixture(t)
	providerID := uuid.New()
	staff := &memberships.Membership{
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         enums.MemberRoleStaff,
		Capabilities: memberships.DeriveCapabilities(enums.MemberRoleStaff),
	}
	row := seedLocation(f, providerID, false)

	err := f.svc.Delete(context.Background(), staff, row.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
