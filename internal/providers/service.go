package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/types"
)

type providerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	FindBySlug(ctx context.Context, slug string) (*models.Provider, error)
	Update(ctx context.Context, provider *models.Provider) error
	ListVisible(ctx context.Context, limit int) ([]models.Provider, error)
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service exposes provider profile operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ProviderDTO, error)
	GetBySlug(ctx context.Context, slug string) (*PublicProviderDTO, error)
	ListVisible(ctx context.Context, limit int) ([]PublicProviderDTO, error)
	Update(ctx context.Context, actor *memberships.Membership, input UpdateProviderInput) (*ProviderDTO, error)
}

type service struct {
	repo  providerRepository
	audit auditRecorder
}

// NewService builds a provider service with the provided repository.
func NewService(repo providerRepository, auditor auditRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("provider repository required")
	}
	return &service{repo: repo, audit: auditor}, nil
}

// UpdateProviderInput captures the allowed provider fields for mutation.
// Nil pointers leave the stored value untouched.
type UpdateProviderInput struct {
	Name               *string
	Description        *string
	IsVisible          *bool
	Phone              *string
	Email              *string
	Address            *types.Address
	Social             *types.Social
	LogoURL            *string
	BannerURL          *string
	BannerTransform    *types.BannerTransform
	Cuisines           *[]string
	MaxGuests          *int
	AdvanceBookingDays *int
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProviderDTO, error) {
	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}
	return FromModel(provider), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*PublicProviderDTO, error) {
	provider, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}
	if !provider.IsVisible {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
	}
	return PublicFromModel(provider), nil
}

func (s *service) ListVisible(ctx context.Context, limit int) ([]PublicProviderDTO, error) {
	rows, err := s.repo.ListVisible(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list providers")
	}
	out := make([]PublicProviderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *PublicFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor *memberships.Membership, input UpdateProviderInput) (*ProviderDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditProviderSettings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	provider, err := s.repo.FindByID(ctx, actor.ProviderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}

	changed := applyUpdate(provider, input)
	if len(changed) == 0 {
		return FromModel(provider), nil
	}

	if provider.MaxGuests < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_guests must not be negative")
	}
	if provider.AdvanceBookingDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "advance_booking_days must not be negative")
	}

	if err := s.repo.Update(ctx, provider); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update provider")
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{
			ProviderID: provider.ID,
			Action:     enums.AuditActionProfileUpdated,
			EntityType: enums.AuditEntityProvider,
			EntityID:   &provider.ID,
			Actor: &audit.ActorRef{
				UserID:     actor.UserID,
				ProviderID: &actor.ProviderID,
				Role:       string(actor.Role),
			},
			Data: map[string]any{"fields": changed},
		})
	}

	return FromModel(provider), nil
}

func applyUpdate(provider *models.Provider, input UpdateProviderInput) []string {
	changed := []string{}

	if input.Name != nil && *input.Name != provider.Name {
		provider.Name = *input.Name
		changed = append(changed, "name")
	}
	if input.Description != nil {
		provider.Description = input.Description
		changed = append(changed, "description")
	}
	if input.IsVisible != nil && *input.IsVisible != provider.IsVisible {
		provider.IsVisible = *input.IsVisible
		changed = append(changed, "is_visible")
	}
	if input.Phone != nil {
		provider.Phone = input.Phone
		changed = append(changed, "phone")
	}
	if input.Email != nil {
		provider.Email = input.Email
		changed = append(changed, "email")
	}
	if input.Address != nil {
		provider.Address = input.Address
		changed = append(changed, "address")
	}
	if input.Social != nil {
		provider.Social = input.Social
		changed = append(changed, "social")
	}
	if input.LogoURL != nil {
		provider.LogoURL = input.LogoURL
		changed = append(changed, "logo_url")
	}
	if input.BannerURL != nil {
		provider.BannerURL = input.BannerURL
		changed = append(changed, "banner_url")
	}
	if input.BannerTransform != nil {
		normalized := input.BannerTransform.Normalized()
		provider.BannerTransform = &normalized
		changed = append(changed, "banner_transform")
	}
	if input.Cuisines != nil {
		provider.Cuisines = pq.StringArray(append([]string(nil), (*input.Cuisines)...))
		changed = append(changed, "cuisines")
	}
	if input.MaxGuests != nil && *input.MaxGuests != provider.MaxGuests {
		provider.MaxGuests = *input.MaxGuests
		changed = append(changed, "max_guests")
	}
	if input.AdvanceBookingDays != nil && *input.AdvanceBookingDays != provider.AdvanceBookingDays {
		provider.AdvanceBookingDays = *input.AdvanceBookingDays
		changed = append(changed, "advance_booking_days")
	}

	return changed
}
