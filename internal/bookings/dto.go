package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// BookingDTO is the transport shape for a booking.
type BookingDTO struct {
	ID               uuid.UUID           `json:"id"`
	ProviderID       uuid.UUID           `json:"provider_id"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    *string             `json:"customer_email,omitempty"`
	CustomerPhone    *string             `json:"customer_phone,omitempty"`
	EventDate        *time.Time          `json:"event_date,omitempty"`
	Venue            *string             `json:"venue,omitempty"`
	Headcount        int                 `json:"headcount"`
	PricePerHead     decimal.Decimal     `json:"price_per_head"`
	QuoteTotal       decimal.Decimal     `json:"quote_total"`
	Status           enums.BookingStatus `json:"status"`
	TeamID           *uuid.UUID          `json:"team_id,omitempty"`
	AssignedMemberID *uuid.UUID          `json:"assigned_member_id,omitempty"`
	MenuTags         []string            `json:"menu_tags,omitempty"`
	Notes            *string             `json:"notes,omitempty"`
	CreatedByUserID  uuid.UUID           `json:"created_by_user_id"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func ToDTO(b *models.Booking) *BookingDTO {
	if b == nil {
		return nil
	}

	return &BookingDTO{
		ID:               b.ID,
		ProviderID:       b.ProviderID,
		CustomerName:     b.CustomerName,
		CustomerEmail:    b.CustomerEmail,
		CustomerPhone:    b.CustomerPhone,
		EventDate:        b.EventDate,
		Venue:            b.Venue,
		Headcount:        b.Headcount,
		PricePerHead:     b.PricePerHead,
		QuoteTotal:       b.QuoteTotal,
		Status:           b.Status,
		TeamID:           b.TeamID,
		AssignedMemberID: b.AssignedMemberID,
		MenuTags:         append([]string(nil), b.MenuTags...),
		Notes:            b.Notes,
		CreatedByUserID:  b.CreatedByUserID,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toDTOs(rows []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
