package teams

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

// Repository exposes team and roster persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByProvider returns the provider's teams, name order.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Team, error) {
	var rows []models.Team
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a team scoped to its provider.
func (r *Repository) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Create inserts a new team row.
func (r *Repository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

// Update persists the full team row.
func (r *Repository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

// ListRoster returns the team's roster entries, active first.
func (r *Repository) ListRoster(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	var rows []models.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("is_active DESC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AddRosterMember places a membership on the roster, reactivating a removed
// entry when one already exists.
func (r *Repository) AddRosterMember(ctx context.Context, teamID, membershipID uuid.UUID) (*models.TeamMember, error) {
	var existing models.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND membership_id = ?", teamID, membershipID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.IsActive {
			return &existing, nil
		}
		updates := map[string]any{"is_active": true, "removed_at": nil}
		if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.IsActive = true
		existing.RemovedAt = nil
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		entry := &models.TeamMember{TeamID: teamID, MembershipID: membershipID, IsActive: true}
		if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
			return nil, err
		}
		return entry, nil
	default:
		return nil, err
	}
}

// RemoveRosterMember soft-removes a roster entry.
func (r *Repository) RemoveRosterMember(ctx context.Context, teamID, membershipID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND membership_id = ? AND is_active", teamID, membershipID).
		Updates(map[string]any{"is_active": false, "removed_at": at})
	return result.RowsAffected, result.Error
}

// FindByIDTx loads a provider-scoped team inside the caller's transaction,
// taking a FOR UPDATE lock on the row. Concurrent capacity checks for the
// same team serialize behind the lock instead of both reading a stale count.
func (r *Repository) FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ActiveRosterTx returns the team's active membership IDs inside the caller's
// transaction.
func (r *Repository) ActiveRosterTx(tx *gorm.DB, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.TeamMember{}).
		Where("team_id = ? AND is_active", teamID).
		Order("created_at ASC").
		Pluck("membership_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
