package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceLocation is one address a provider caters from. Exactly one row per
// provider carries is_primary, backed by a partial unique index.
type ServiceLocation struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID uuid.UUID `gorm:"column:provider_id;type:uuid;not null"`
	Label      string    `gorm:"column:label;not null"`
	Line1      string    `gorm:"column:line1;not null"`
	Barangay   *string   `gorm:"column:barangay"`
	City       string    `gorm:"column:city;not null"`
	Province   string    `gorm:"column:province;not null"`
	PostalCode *string   `gorm:"column:postal_code"`
	Country    string    `gorm:"column:country;not null;default:'PH'"`
	Landmark   *string   `gorm:"column:landmark"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
