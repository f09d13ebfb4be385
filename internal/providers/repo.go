package providers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

// Repository exposes provider persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a provider by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// FindBySlug loads a provider by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// Create inserts a new provider row.
func (r *Repository) Create(ctx context.Context, dto CreateProviderDTO) (*models.Provider, error) {
	provider := &models.Provider{
		Name:      dto.Name,
		Slug:      dto.Slug,
		IsVisible: true,
		Phone:     dto.Phone,
		Email:     dto.Email,
		OwnerID:   dto.OwnerID,
	}
	if err := r.db.WithContext(ctx).Create(provider).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

// CreateTx inserts a new provider inside the caller's transaction.
func (r *Repository) CreateTx(tx *gorm.DB, dto CreateProviderDTO) (*models.Provider, error) {
	provider := &models.Provider{
		Name:      dto.Name,
		Slug:      dto.Slug,
		IsVisible: true,
		Phone:     dto.Phone,
		Email:     dto.Email,
		OwnerID:   dto.OwnerID,
	}
	if err := tx.Create(provider).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

// Update rewrites the provider row.
func (r *Repository) Update(ctx context.Context, provider *models.Provider) error {
	return r.db.WithContext(ctx).Save(provider).Error
}

// ListVisible returns visible providers for the public directory, newest
// first.
func (r *Repository) ListVisible(ctx context.Context, limit int) ([]models.Provider, error) {
	var rows []models.Provider
	query := r.db.WithContext(ctx).
		Where("is_visible = ?", true).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
