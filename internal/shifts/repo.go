package shifts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Repository exposes shift persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForMembership returns the member's shifts, soonest scheduled first.
func (r *Repository) ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Shift, error) {
	var rows []models.Shift
	err := r.db.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Order("scheduled_start ASC NULLS LAST, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one shift.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// Transition moves the shift from one status to another, stamping the given
// column. The guard on the current status makes racing check-ins lose.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from, to enums.ShiftStatus, stampColumn string, at time.Time) (int64, error) {
	updates := map[string]any{"status": to}
	if stampColumn != "" {
		updates[stampColumn] = at
	}
	result := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// MembershipIDsForBookingTx returns the membership ids already holding a
// shift for the booking, inside the caller's transaction.
func (r *Repository) MembershipIDsForBookingTx(tx *gorm.DB, bookingID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.Shift{}).
		Where("booking_id = ?", bookingID).
		Pluck("membership_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateTx inserts a shift inside the caller's transaction. The unique index
// on (booking_id, membership_id) keeps repeat assignment idempotent.
func (r *Repository) CreateTx(tx *gorm.DB, shift *models.Shift) error {
	return tx.Create(shift).Error
}

// AutoCheckoutStale checks out shifts still checked in whose scheduled end
// (or start, when no end is set) lapsed before the cutoff. Returns the number
// of rows touched.
func (r *Repository) AutoCheckoutStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("status = ? AND COALESCE(scheduled_end, scheduled_start) < ?", enums.ShiftStatusCheckedIn, cutoff).
		Updates(map[string]any{
			"status":     enums.ShiftStatusCheckedOut,
			"actual_end": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
