package gallery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

// Repository exposes gallery persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByProvider returns the provider's gallery in display order.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.GalleryImage, error) {
	var rows []models.GalleryImage
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("ordinal ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByProviderTx reads the gallery inside the caller's transaction.
func (r *Repository) ListByProviderTx(tx *gorm.DB, providerID uuid.UUID) ([]models.GalleryImage, error) {
	var rows []models.GalleryImage
	err := tx.
		Where("provider_id = ?", providerID).
		Order("ordinal ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertTx writes one image inside the caller's transaction. Rows with a zero
// ID are inserted.
func (r *Repository) UpsertTx(tx *gorm.DB, image *models.GalleryImage) error {
	if image.ID == uuid.Nil {
		return tx.Create(image).Error
	}
	return tx.Model(&models.GalleryImage{}).
		Where("id = ? AND provider_id = ?", image.ID, image.ProviderID).
		Updates(map[string]any{
			"url":     image.URL,
			"caption": image.Caption,
			"ordinal": image.Ordinal,
		}).Error
}

// DeleteMissingTx removes gallery rows absent from keep.
func (r *Repository) DeleteMissingTx(tx *gorm.DB, providerID uuid.UUID, keep []uuid.UUID) error {
	query := tx.Where("provider_id = ?", providerID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(&models.GalleryImage{}).Error
}

// Delete removes one provider-scoped image.
func (r *Repository) Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		Delete(&models.GalleryImage{})
	return result.RowsAffected, result.Error
}
