package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Repository exposes invitation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new invitation row.
func (r *Repository) Create(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindByID loads an invitation scoped to its provider.
func (r *Repository) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindByToken loads an invitation by its raw token. This is the only
// unscoped read in the package; accept flows have no provider context until
// the token resolves.
func (r *Repository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindPendingByEmail returns a live invitation for the email inside the
// provider, if one exists.
func (r *Repository) FindPendingByEmail(ctx context.Context, providerID uuid.UUID, email string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND LOWER(email) = LOWER(?) AND accepted_at IS NULL AND revoked_at IS NULL AND expires_at > ?",
			providerID, email, time.Now()).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListByProvider returns the provider's invitations, newest first.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Invitation, error) {
	var rows []models.Invitation
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkResent stamps the resend bookkeeping and pushes out the expiry.
func (r *Repository) MarkResent(ctx context.Context, id uuid.UUID, token string, expiresAt, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"token":        token,
			"expires_at":   expiresAt,
			"last_sent_at": sentAt,
			"resend_count": gorm.Expr("resend_count + 1"),
		}).Error
}

// Revoke stamps revoked_at on a pending invitation.
func (r *Repository) Revoke(ctx context.Context, providerID, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND provider_id = ? AND accepted_at IS NULL AND revoked_at IS NULL", id, providerID).
		Update("revoked_at", at).Error
}

// AcceptTx stamps accepted_at inside the caller's transaction, guarded so a
// concurrent accept of the same row loses.
func (r *Repository) AcceptTx(tx *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	result := tx.
		Model(&models.Invitation{}).
		Where("id = ? AND accepted_at IS NULL AND revoked_at IS NULL", id).
		Update("accepted_at", at)
	return result.RowsAffected, result.Error
}

// CreateMembershipTx inserts the membership row minted by an accept inside
// the same transaction.
func (r *Repository) CreateMembershipTx(tx *gorm.DB, invitation *models.Invitation, userID uuid.UUID, at time.Time) (*models.ProviderMembership, error) {
	membership := &models.ProviderMembership{
		ProviderID:      invitation.ProviderID,
		UserID:          userID,
		Role:            invitation.Role,
		Status:          enums.MembershipStatusActive,
		InvitedByUserID: &invitation.InvitedByUserID,
		JoinedAt:        &at,
	}
	if err := tx.Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// ExpireStale revokes pending invitations whose expiry lapsed before the
// cutoff. Returns the number of rows touched.
func (r *Repository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("accepted_at IS NULL AND revoked_at IS NULL AND expires_at < ?", cutoff).
		Update("revoked_at", time.Now())
	return result.RowsAffected, result.Error
}
