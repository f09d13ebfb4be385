package providers

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/types"
)

// ProviderDTO is the transport shape for a catering business profile.
type ProviderDTO struct {
	ID                 uuid.UUID              `json:"id"`
	Name               string                 `json:"name"`
	Slug               string                 `json:"slug"`
	Description        *string                `json:"description,omitempty"`
	IsVisible          bool                   `json:"is_visible"`
	Phone              *string                `json:"phone,omitempty"`
	Email              *string                `json:"email,omitempty"`
	Address            *types.Address         `json:"address,omitempty"`
	Social             *types.Social          `json:"social,omitempty"`
	LogoURL            *string                `json:"logo_url,omitempty"`
	BannerURL          *string                `json:"banner_url,omitempty"`
	BannerTransform    *types.BannerTransform `json:"banner_transform,omitempty"`
	Cuisines           []string               `json:"cuisines"`
	MaxGuests          int                    `json:"max_guests"`
	AdvanceBookingDays int                    `json:"advance_booking_days"`
	OwnerID            uuid.UUID              `json:"owner_id"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// PublicProviderDTO is the narrowed listing shape exposed without auth.
type PublicProviderDTO struct {
	ID                 uuid.UUID              `json:"id"`
	Name               string                 `json:"name"`
	Slug               string                 `json:"slug"`
	Description        *string                `json:"description,omitempty"`
	Address            *types.Address         `json:"address,omitempty"`
	Social             *types.Social          `json:"social,omitempty"`
	LogoURL            *string                `json:"logo_url,omitempty"`
	BannerURL          *string                `json:"banner_url,omitempty"`
	BannerTransform    *types.BannerTransform `json:"banner_transform,omitempty"`
	Cuisines           []string               `json:"cuisines"`
	MaxGuests          int                    `json:"max_guests"`
	AdvanceBookingDays int                    `json:"advance_booking_days"`
}

// CreateProviderDTO holds the data required to persist a new provider.
type CreateProviderDTO struct {
	Name    string
	Slug    string
	OwnerID uuid.UUID
	Phone   *string
	Email   *string
}

func FromModel(p *models.Provider) *ProviderDTO {
	if p == nil {
		return nil
	}

	return &ProviderDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		IsVisible:          p.IsVisible,
		Phone:              p.Phone,
		Email:              p.Email,
		Address:            p.Address,
		Social:             p.Social,
		LogoURL:            p.LogoURL,
		BannerURL:          p.BannerURL,
		BannerTransform:    p.BannerTransform,
		Cuisines:           append([]string(nil), p.Cuisines...),
		MaxGuests:          p.MaxGuests,
		AdvanceBookingDays: p.AdvanceBookingDays,
		OwnerID:            p.OwnerID,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func PublicFromModel(p *models.Provider) *PublicProviderDTO {
	if p == nil {
		return nil
	}

	return &PublicProviderDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Address:            p.Address,
		Social:             p.Social,
		LogoURL:            p.LogoURL,
		BannerURL:          p.BannerURL,
		BannerTransform:    p.BannerTransform,
		Cuisines:           append([]string(nil), p.Cuisines...),
		MaxGuests:          p.MaxGuests,
		AdvanceBookingDays: p.AdvanceBookingDays,
	}
}
