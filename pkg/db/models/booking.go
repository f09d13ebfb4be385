package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Booking is one catering engagement for a provider.
type Booking struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID       uuid.UUID           `gorm:"column:provider_id;type:uuid;not null"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	CustomerEmail    *string             `gorm:"column:customer_email"`
	CustomerPhone    *string             `gorm:"column:customer_phone"`
	EventDate        *time.Time          `gorm:"column:event_date;type:date"`
	Venue            *string             `gorm:"column:venue"`
	Headcount        int                 `gorm:"column:headcount;not null;default:0"`
	PricePerHead     decimal.Decimal     `gorm:"column:price_per_head;type:numeric(12,2);not null;default:0"`
	QuoteTotal       decimal.Decimal     `gorm:"column:quote_total;type:numeric(12,2);not null;default:0"`
	Status           enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	TeamID           *uuid.UUID          `gorm:"column:team_id;type:uuid"`
	AssignedMemberID *uuid.UUID          `gorm:"column:assigned_member_id;type:uuid"`
	MenuTags         pq.StringArray      `gorm:"column:menu_tags;type:text[]"`
	Notes            *string             `gorm:"column:notes"`
	CreatedByUserID  uuid.UUID           `gorm:"column:created_by_user_id;type:uuid;not null"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
