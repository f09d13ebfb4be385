package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

const defaultCountry = "PH"

type locationRepository interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceLocation, error)
	ListByProviderTx(tx *gorm.DB, providerID uuid.UUID) ([]models.ServiceLocation, error)
	UpsertTx(tx *gorm.DB, location *models.ServiceLocation) error
	DeleteMissingTx(tx *gorm.DB, providerID uuid.UUID, keep []uuid.UUID) error
	ClearPrimaryTx(tx *gorm.DB, providerID uuid.UUID) error
	FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.ServiceLocation, error)
	DeleteTx(tx *gorm.DB, providerID, id uuid.UUID) error
	PromoteOldestTx(tx *gorm.DB, providerID uuid.UUID) error
	CountTx(tx *gorm.DB, providerID uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service manages a provider's catering locations.
type Service interface {
	List(ctx context.Context, actor *memberships.Membership) ([]LocationDTO, error)
	SaveAll(ctx context.Context, actor *memberships.Membership, inputs []LocationInput) ([]LocationDTO, error)
	Delete(ctx context.Context, actor *memberships.Membership, locationID uuid.UUID) error
}

type service struct {
	repo  locationRepository
	tx    txRunner
	audit auditRecorder
}

// NewService wires the locations service.
func NewService(repo locationRepository, tx txRunner, auditor auditRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, audit: auditor}, nil
}

func (s *service) List(ctx context.Context, actor *memberships.Membership) ([]LocationDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	rows, err := s.repo.ListByProvider(ctx, actor.ProviderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return toDTOs(rows), nil
}

// SaveAll replaces the provider's location set. The payload is validated in
// full, including the exactly-one-primary rule, before anything is written;
// the whole replacement then commits in one transaction with the partial
// unique index on (provider_id) WHERE is_primary as the final arbiter.
func (s *service) SaveAll(ctx context.Context, actor *memberships.Membership, inputs []LocationInput) ([]LocationDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditProviderSettings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	if err := validateSavePayload(inputs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid locations payload")
	}

	var saved []models.ServiceLocation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.ListByProviderTx(tx, actor.ProviderID)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(existing))
		for _, row := range existing {
			known[row.ID] = true
		}

		keep := make([]uuid.UUID, 0, len(inputs))
		for _, input := range inputs {
			if input.ID == nil {
				continue
			}
			if !known[*input.ID] {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown location id %s", *input.ID))
			}
			keep = append(keep, *input.ID)
		}

		if err := s.repo.DeleteMissingTx(tx, actor.ProviderID, keep); err != nil {
			return err
		}
		if err := s.repo.ClearPrimaryTx(tx, actor.ProviderID); err != nil {
			return err
		}

		for _, input := range inputs {
			row := input.toModel(actor.ProviderID)
			if err := s.repo.UpsertTx(tx, row); err != nil {
				return err
			}
		}

		saved, err = s.repo.ListByProviderTx(tx, actor.ProviderID)
		return err
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save locations")
	}

	s.recordAudit(ctx, actor, enums.AuditActionLocationsSaved, nil, map[string]any{
		"count": len(saved),
	})
	return toDTOs(saved), nil
}

// Delete removes one location. A provider always keeps at least one location,
// and deleting the primary promotes the oldest remaining one.
func (s *service) Delete(ctx context.Context, actor *memberships.Membership, locationID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditProviderSettings {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if locationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}

	var wasPrimary bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		location, err := s.repo.FindByIDTx(tx, actor.ProviderID, locationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
			}
			return err
		}

		count, err := s.repo.CountTx(tx, actor.ProviderID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return pkgerrors.New(pkgerrors.CodeConflict, "a provider must keep at least one location")
		}

		if err := s.repo.DeleteTx(tx, actor.ProviderID, locationID); err != nil {
			return err
		}

		wasPrimary = location.IsPrimary
		if wasPrimary {
			return s.repo.PromoteOldestTx(tx, actor.ProviderID)
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete location")
	}

	s.recordAudit(ctx, actor, enums.AuditActionLocationDeleted, &locationID, map[string]any{
		"was_primary": wasPrimary,
	})
	return nil
}

// validateSavePayload collects every payload problem rather than stopping at
// the first, so the client sees the full picture in one round trip.
func validateSavePayload(inputs []LocationInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("at least one location is required")
	}

	var errs error
	seen := map[uuid.UUID]bool{}
	primaries := 0
	for i, input := range inputs {
		if strings.TrimSpace(input.Label) == "" {
			errs = multierr.Append(errs, fmt.Errorf("locations[%d]: label is required", i))
		}
		if strings.TrimSpace(input.Line1) == "" {
			errs = multierr.Append(errs, fmt.Errorf("locations[%d]: line1 is required", i))
		}
		if strings.TrimSpace(input.City) == "" {
			errs = multierr.Append(errs, fmt.Errorf("locations[%d]: city is required", i))
		}
		if strings.TrimSpace(input.Province) == "" {
			errs = multierr.Append(errs, fmt.Errorf("locations[%d]: province is required", i))
		}
		if input.ID != nil {
			if seen[*input.ID] {
				errs = multierr.Append(errs, fmt.Errorf("locations[%d]: duplicate id %s", i, *input.ID))
			}
			seen[*input.ID] = true
		}
		if input.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		errs = multierr.Append(errs, fmt.Errorf("exactly one location must be primary, got %d", primaries))
	}
	return errs
}

func (input LocationInput) toModel(providerID uuid.UUID) *models.ServiceLocation {
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = defaultCountry
	}

	row := &models.ServiceLocation{
		ProviderID: providerID,
		Label:      strings.TrimSpace(input.Label),
		Line1:      strings.TrimSpace(input.Line1),
		Barangay:   input.Barangay,
		City:       strings.TrimSpace(input.City),
		Province:   strings.TrimSpace(input.Province),
		PostalCode: input.PostalCode,
		Country:    country,
		Landmark:   input.Landmark,
		IsPrimary:  input.IsPrimary,
	}
	if input.ID != nil {
		row.ID = *input.ID
	}
	return row
}

func (s *service) recordAudit(ctx context.Context, actor *memberships.Membership, action enums.AuditAction, entityID *uuid.UUID, data map[string]any) {
	if s.audit == nil {
		return
	}
	providerID := actor.ProviderID
	s.audit.Record(ctx, audit.Event{
		ProviderID: providerID,
		Action:     action,
		EntityType: enums.AuditEntityLocation,
		EntityID:   entityID,
		Actor: &audit.ActorRef{
			UserID:     actor.UserID,
			ProviderID: &providerID,
			Role:       string(actor.Role),
		},
		Data: data,
	})
}
