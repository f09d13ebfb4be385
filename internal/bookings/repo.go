package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	"github.com/caterkita/caterkita-backend/pkg/pagination"
)

// Repository exposes booking persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listBookingsParams struct {
	ProviderID uuid.UUID
	TeamID     *uuid.UUID
	Status     *enums.BookingStatus
	Limit      int
	Cursor     *pagination.Cursor
}

// List returns provider bookings newest first, keyset-paginated on
// (created_at, id). A non-nil TeamID narrows to that team's bookings.
func (r *Repository) List(ctx context.Context, params listBookingsParams) ([]models.Booking, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("provider_id = ?", params.ProviderID)
	if params.TeamID != nil {
		query = query.Where("team_id = ?", *params.TeamID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Booking
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// FindByID loads a booking scoped to its provider.
func (r *Repository) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create inserts a new booking row.
func (r *Repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// Update persists the full booking row.
func (r *Repository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// UpdateStatus moves the booking to the target status, guarded on the
// expected current status so racing transitions lose.
func (r *Repository) UpdateStatus(ctx context.Context, providerID, id uuid.UUID, from, to enums.BookingStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND provider_id = ? AND status = ?", id, providerID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// FindByIDTx loads a provider-scoped booking inside the caller's transaction.
func (r *Repository) FindByIDTx(tx *gorm.DB, providerID, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := tx.
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountTeamBookingsOnDateTx counts the team's bookings on the event date,
// excluding cancelled ones and the booking being assigned, inside the
// caller's transaction. This is the capacity gate.
func (r *Repository) CountTeamBookingsOnDateTx(tx *gorm.DB, teamID uuid.UUID, eventDate time.Time, excludeBookingID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.Booking{}).
		Where("team_id = ? AND event_date = ? AND status <> ? AND id <> ?",
			teamID, eventDate.Format("2006-01-02"), enums.BookingStatusCancelled, excludeBookingID).
		Count(&count).Error
	return count, err
}

// SetTeamTx writes the team assignment inside the caller's transaction.
func (r *Repository) SetTeamTx(tx *gorm.DB, bookingID uuid.UUID, teamID *uuid.UUID) error {
	return tx.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("team_id", teamID).Error
}
