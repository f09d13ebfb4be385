package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/caterkita/caterkita-backend/pkg/types"
)

// Provider represents the canonical tenant model: one catering business.
type Provider struct {
	ID                 uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string                 `gorm:"column:name;not null"`
	Slug               string                 `gorm:"column:slug;not null;uniqueIndex"`
	Description        *string                `gorm:"column:description"`
	IsVisible          bool                   `gorm:"column:is_visible;not null;default:true"`
	Phone              *string                `gorm:"column:phone"`
	Email              *string                `gorm:"column:email"`
	Address            *types.Address         `gorm:"column:address;type:address_t"`
	Social             *types.Social          `gorm:"column:social;type:social_t"`
	LogoURL            *string                `gorm:"column:logo_url"`
	BannerURL          *string                `gorm:"column:banner_url"`
	BannerTransform    *types.BannerTransform `gorm:"column:banner_transform;type:jsonb"`
	Cuisines           pq.StringArray         `gorm:"column:cuisines;type:text[]"`
	MaxGuests          int                    `gorm:"column:max_guests;not null;default:0"`
	AdvanceBookingDays int                    `gorm:"column:advance_booking_days;not null;default:3"`
	OwnerID            uuid.UUID              `gorm:"column:owner_id;type:uuid;not null"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
