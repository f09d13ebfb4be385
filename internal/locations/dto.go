package locations

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

// LocationDTO is the transport shape for a service location.
type LocationDTO struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Label      string    `json:"label"`
	Line1      string    `json:"line1"`
	Barangay   *string   `json:"barangay,omitempty"`
	City       string    `json:"city"`
	Province   string    `json:"province"`
	PostalCode *string   `json:"postal_code,omitempty"`
	Country    string    `json:"country"`
	Landmark   *string   `json:"landmark,omitempty"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LocationInput is one entry in a SaveAll payload. A nil ID creates a new
// location; a set ID updates the existing row.
type LocationInput struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	Label      string     `json:"label" validate:"required"`
	Line1      string     `json:"line1" validate:"required"`
	Barangay   *string    `json:"barangay,omitempty"`
	City       string     `json:"city" validate:"required"`
	Province   string     `json:"province" validate:"required"`
	PostalCode *string    `json:"postal_code,omitempty"`
	Country    string     `json:"country,omitempty"`
	Landmark   *string    `json:"landmark,omitempty"`
	IsPrimary  bool       `json:"is_primary"`
}

func ToDTO(l *models.ServiceLocation) *LocationDTO {
	if l == nil {
		return nil
	}

	return &LocationDTO{
		ID:         l.ID,
		ProviderID: l.ProviderID,
		Label:      l.Label,
		Line1:      l.Line1,
		Barangay:   l.Barangay,
		City:       l.City,
		Province:   l.Province,
		PostalCode: l.PostalCode,
		Country:    l.Country,
		Landmark:   l.Landmark,
		IsPrimary:  l.IsPrimary,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func toDTOs(rows []models.ServiceLocation) []LocationDTO {
	out := make([]LocationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
