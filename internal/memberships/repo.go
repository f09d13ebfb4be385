package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection. Pass a
// transaction handle to scope writes to an enclosing transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListUserProviders returns the providers a user belongs to along with
// membership metadata.
func (r *Repository) ListUserProviders(ctx context.Context, userID uuid.UUID) ([]MembershipWithProvider, error) {
	var rows []membershipWithProviderRow

	err := r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Select("provider_memberships.*, providers.name AS provider_name, providers.slug AS provider_slug").
		Joins("JOIN providers ON providers.id = provider_memberships.provider_id").
		Where("provider_memberships.user_id = ?", userID).
		Order("providers.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembership retrieves a membership by user and provider regardless of
// status.
func (r *Repository) GetMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error) {
	var membership models.ProviderMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Order("created_at DESC").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetActiveMembership retrieves the active membership for user + provider.
func (r *Repository) GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error) {
	var membership models.ProviderMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ? AND status = ?", userID, providerID, enums.MembershipStatusActive).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FirstActiveMembership returns the user's oldest active membership, used
// when a request carries no explicit provider scope.
func (r *Repository) FirstActiveMembership(ctx context.Context, userID uuid.UUID) (*models.ProviderMembership, error) {
	var membership models.ProviderMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.MembershipStatusActive).
		Order("created_at ASC").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByID retrieves a membership row by its primary key.
func (r *Repository) GetByID(ctx context.Context, membershipID uuid.UUID) (*models.ProviderMembership, error) {
	var membership models.ProviderMembership
	err := r.db.WithContext(ctx).
		Where("id = ?", membershipID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record. The partial unique
// index rejects a second active row for the same user + provider.
func (r *Repository) CreateMembership(ctx context.Context, providerID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.ProviderMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}

	membership := &models.ProviderMembership{
		ProviderID:      providerID,
		UserID:          userID,
		Role:            role,
		Status:          status,
		InvitedByUserID: invitedBy,
	}
	if status == enums.MembershipStatusActive {
		now := time.Now().UTC()
		membership.JoinedAt = &now
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// CreateMembershipTx inserts a membership row inside the caller's
// transaction.
func (r *Repository) CreateMembershipTx(tx *gorm.DB, providerID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.ProviderMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}

	membership := &models.ProviderMembership{
		ProviderID:      providerID,
		UserID:          userID,
		Role:            role,
		Status:          status,
		InvitedByUserID: invitedBy,
	}
	if status == enums.MembershipStatusActive {
		now := time.Now().UTC()
		membership.JoinedAt = &now
	}

	if err := tx.Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// ListProviderMembers returns memberships for the provider along with user
// metadata, oldest first.
func (r *Repository) ListProviderMembers(ctx context.Context, providerID uuid.UUID) ([]ProviderMemberDTO, error) {
	var rows []providerMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Select("provider_memberships.*, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = provider_memberships.user_id").
		Where("provider_memberships.provider_id = ?", providerID).
		Order("provider_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return providerMembersFromRows(rows), nil
}

// CountActiveByRole counts active memberships holding the given role, used
// for the last-owner guard.
func (r *Repository) CountActiveByRole(ctx context.Context, providerID uuid.UUID, role enums.MemberRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Where("provider_id = ? AND role = ? AND status = ?", providerID, role, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateRole rewrites the role on a membership row.
func (r *Repository) UpdateRole(ctx context.Context, membershipID uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid member role %q", role)
	}
	return r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Where("id = ?", membershipID).
		Update("role", role).Error
}

// UpdateStatus moves a membership between active and suspended.
func (r *Repository) UpdateStatus(ctx context.Context, membershipID uuid.UUID, status enums.MembershipStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid membership status %q", status)
	}
	return r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Where("id = ?", membershipID).
		Update("status", status).Error
}

// SetTeam assigns or clears the membership's team.
func (r *Repository) SetTeam(ctx context.Context, membershipID uuid.UUID, teamID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Where("id = ?", membershipID).
		Update("team_id", teamID).Error
}

// Delete removes a membership row. Removal is the only hard delete in the
// membership lifecycle.
func (r *Repository) Delete(ctx context.Context, membershipID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", membershipID).
		Delete(&models.ProviderMembership{}).Error
}

// UserHasRole reports whether the user holds one of the provided roles for
// the provider with an active membership.
func (r *Repository) UserHasRole(ctx context.Context, userID, providerID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProviderMembership{}).
		Where("user_id = ? AND provider_id = ? AND status = ? AND role IN ?", userID, providerID, enums.MembershipStatusActive, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
