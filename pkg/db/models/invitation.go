package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// Invitation is a pending offer to join a provider under a given role.
// Email is stored lowercased; the token is the only unscoped lookup key.
type Invitation struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID      uuid.UUID        `gorm:"column:provider_id;type:uuid;not null"`
	Email           string           `gorm:"column:email;type:text;not null"`
	Role            enums.MemberRole `gorm:"column:role;type:member_role;not null"`
	Token           string           `gorm:"column:token;type:text;not null;uniqueIndex"`
	ExpiresAt       time.Time        `gorm:"column:expires_at;not null"`
	AcceptedAt      *time.Time       `gorm:"column:accepted_at"`
	RevokedAt       *time.Time       `gorm:"column:revoked_at"`
	InvitedByUserID uuid.UUID        `gorm:"column:invited_by_user_id;type:uuid;not null"`
	ResendCount     int              `gorm:"column:resend_count;not null;default:0"`
	LastSentAt      *time.Time       `gorm:"column:last_sent_at"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the invitation lapsed before now.
func (i Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsPending reports whether the invitation can still be accepted.
func (i Invitation) IsPending(now time.Time) bool {
	return i.AcceptedAt == nil && i.RevokedAt == nil && !i.IsExpired(now)
}
