package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryImage is one entry in a provider's ordered gallery.
type GalleryImage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID uuid.UUID `gorm:"column:provider_id;type:uuid;not null"`
	URL        string    `gorm:"column:url;not null"`
	Caption    *string   `gorm:"column:caption"`
	Ordinal    int       `gorm:"column:ordinal;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
