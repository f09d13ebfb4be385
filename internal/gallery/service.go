package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

const maxGalleryImages = 50

type galleryRepository interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.GalleryImage, error)
	ListByProviderTx(tx *gorm.DB, providerID uuid.UUID) ([]models.GalleryImage, error)
	UpsertTx(tx *gorm.DB, image *models.GalleryImage) error
	DeleteMissingTx(tx *gorm.DB, providerID uuid.UUID, keep []uuid.UUID) error
	Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// ImageDTO is the transport shape for a gallery image.
type ImageDTO struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption,omitempty"`
	Ordinal   int       `json:"ordinal"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageInput is one entry in a gallery save payload. Payload order is display
// order; ordinals are resequenced from it on save.
type ImageInput struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	URL     string     `json:"url" validate:"required,url"`
	Caption *string    `json:"caption,omitempty"`
}

// Service manages a provider's ordered gallery.
type Service interface {
	List(ctx context.Context, actor *memberships.Membership) ([]ImageDTO, error)
	SaveAll(ctx context.Context, actor *memberships.Membership, inputs []ImageInput) ([]ImageDTO, error)
	Delete(ctx context.Context, actor *memberships.Membership, imageID uuid.UUID) error
}

type service struct {
	repo  galleryRepository
	tx    txRunner
	audit auditRecorder
}

// NewService wires the gallery service.
func NewService(repo galleryRepository, tx txRunner, auditor auditRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gallery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, audit: auditor}, nil
}

func (s *service) List(ctx context.Context, actor *memberships.Membership) ([]ImageDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	rows, err := s.repo.ListByProvider(ctx, actor.ProviderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gallery")
	}
	return toDTOs(rows), nil
}

// SaveAll replaces the gallery with the payload, resequencing ordinals from
// payload position so gaps left by edits or deletions never persist.
func (s *service) SaveAll(ctx context.Context, actor *memberships.Membership, inputs []ImageInput) ([]ImageDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditProviderSettings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if len(inputs) > maxGalleryImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("gallery is limited to %d images", maxGalleryImages))
	}
	for i, input := range inputs {
		if strings.TrimSpace(input.URL) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("images[%d]: url is required", i))
		}
	}

	var saved []models.GalleryImage
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
		for i, input := range inputs {
			if input.ID == nil {
				continue
			}
			if !known[*input.ID] {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("images[%d]: unknown id %s", i, *input.ID))
			}
			keep = append(keep, *input.ID)
		}

		if err := s.repo.DeleteMissingTx(tx, actor.ProviderID, keep); err != nil {
			return err
		}
		for i, input := range inputs {
			row := &models.GalleryImage{
				ProviderID: actor.ProviderID,
				URL:        strings.TrimSpace(input.URL),
				Caption:    input.Caption,
				Ordinal:    i,
			}
			if input.ID != nil {
				row.ID = *input.ID
			}
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gallery")
	}

	s.recordAudit(ctx, actor, map[string]any{"count": len(saved)})
	return toDTOs(saved), nil
}

func (s *service) Delete(ctx context.Context, actor *memberships.Membership, imageID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditProviderSettings {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if imageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image id required")
	}

	affected, err := s.repo.Delete(ctx, actor.ProviderID, imageID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}

	s.recordAudit(ctx, actor, map[string]any{"deleted": imageID.String()})
	return nil
}

func (s *service) recordAudit(ctx context.Context, actor *memberships.Membership, data map[string]any) {
	if s.audit == nil {
		return
	}
	providerID := actor.ProviderID
	s.audit.Record(ctx, audit.Event{
		ProviderID: providerID,
		Action:     enums.AuditActionGalleryUpdated,
		EntityType: enums.AuditEntityProvider,
		EntityID:   &providerID,
		Actor: &audit.ActorRef{
			UserID:     actor.UserID,
			ProviderID: &providerID,
			Role:       string(actor.Role),
		},
		Data: data,
	})
}

func toDTOs(rows []models.GalleryImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ImageDTO{
			ID:        row.ID,
			URL:       row.URL,
			Caption:   row.Caption,
			Ordinal:   row.Ordinal,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
