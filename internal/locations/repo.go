package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

// Repository exposes service-location persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByProvider returns the provider's locations, oldest first.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceLocation, error) {
	var rows []models.ServiceLocation
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a location scoped to its provider.
func (r *Repository) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.ServiceLocation, error) {
	var location models.ServiceLocation
	err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// ListByProviderTx reads the provider's locations inside the caller's
// transaction, locking the rows for the duration of a save.
func (r *Repository) ListByProviderTx(tx *gorm.DB, providerID uuid.UUID) ([]models.ServiceLocation, error) {
	var rows []models.ServiceLocation
	err := tx.
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertTx writes a location inside the caller's transaction. Rows with a
// zero ID are inserted.
func (r *Repository) UpsertTx(tx *gorm.DB, location *models.ServiceLocation) error {
	if location.ID == uuid.Nil {
		return tx.Create(location).Error
	}
	return tx.Model(&models.ServiceLocation{}).
		Where("id = ? AND provider_id = ?", location.ID, location.ProviderID).
		Updates(map[string]any{
			"label":       location.Label,
			"line1":       location.Line1,
			"barangay":    location.Barangay,
			"city":        location.City,
			"province":    location.Province,
			"postal_code": location.PostalCode,
			"country":     location.Country,
			"landmark":    location.Landmark,
			"is_primary":  location.IsPrimary,
		}).Error
}

// DeleteMissingTx removes the provider's locations absent from keep.
func (r *Repository) DeleteMissingTx(tx *gorm.DB, providerID uuid.UUID, keep []uuid.UUID) error {
	query := tx.Where("provider_id = ?", providerID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(&models.ServiceLocation{}).Error
}

// ClearPrimaryTx unsets is_primary for the provider so the incoming primary
// can land without tripping the partial unique index mid-save.
func (r *Repository) ClearPrimaryTx(tx *gorm.DB, providerID uuid.UUID) error {
	return tx.Model(&models.ServiceLocation{}).
		Where("provider_id = ? AND is_primary", providerID).
		Update("is_primary", false).Error
}

// FindByIDTx loads one provider-scoped location inside the caller's
// transaction.
func (r *Repository) FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.ServiceLocation, error) {
	var location models.ServiceLocation
	err := tx.
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// DeleteTx removes one location inside the caller's transaction.
func (r *Repository) DeleteTx(tx *gorm.DB, providerID, id uuid.UUID) error {
	return tx.
		Where("id = ? AND provider_id = ?", id, providerID).
		Delete(&models.ServiceLocation{}).Error
}

// PromoteOldestTx marks the provider's oldest remaining location primary.
func (r *Repository) PromoteOldestTx(tx *gorm.DB, providerID uuid.UUID) error {
	var oldest models.ServiceLocation
	err := tx.
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		First(&oldest).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.ServiceLocation{}).
		Where("id = ?", oldest.ID).
		Update("is_primary", true).Error
}

// CountTx counts the provider's locations inside the caller's transaction.
func (r *Repository) CountTx(tx *gorm.DB, providerID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.ServiceLocation{}).
		Where("provider_id = ?", providerID).
		Count(&count).Error
	return count, err
}
