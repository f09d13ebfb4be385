package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID              uuid.UUID              `json:"id"`
	ProviderID      uuid.UUID              `json:"provider_id"`
	UserID          uuid.UUID              `json:"user_id"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	TeamID          *uuid.UUID             `json:"team_id,omitempty"`
	InvitedByUserID *uuid.UUID             `json:"invited_by_user_id,omitempty"`
	JoinedAt        *time.Time             `json:"joined_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// Membership is the resolved view of the caller's standing inside a
// provider, including the derived capability set.
type Membership struct {
	MemberID     uuid.UUID              `json:"member_id"`
	ProviderID   uuid.UUID              `json:"provider_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Role         enums.MemberRole       `json:"role"`
	Status       enums.MembershipStatus `json:"status"`
	TeamID       *uuid.UUID             `json:"team_id,omitempty"`
	Capabilities Capabilities           `json:"capabilities"`
}

// MembershipWithProvider includes basic provider metadata + membership info.
type MembershipWithProvider struct {
	MembershipID    uuid.UUID              `json:"membership_id"`
	ProviderID      uuid.UUID              `json:"provider_id"`
	UserID          uuid.UUID              `json:"user_id"`
	ProviderName    string                 `json:"provider_name"`
	ProviderSlug    string                 `json:"provider_slug"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	InvitedByUserID *uuid.UUID             `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ProviderMemberDTO mixes membership metadata with the associated user
// profile for provider admins browsing the roster.
type ProviderMemberDTO struct {
	MembershipID uuid.UUID              `json:"membership_id"`
	ProviderID   uuid.UUID              `json:"provider_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Email        string                 `json:"email"`
	FirstName    string                 `json:"first_name"`
	LastName     string                 `json:"last_name"`
	Role         enums.MemberRole       `json:"role"`
	Status       enums.MembershipStatus `json:"membership_status"`
	TeamID       *uuid.UUID             `json:"team_id,omitempty"`
	JoinedAt     *time.Time             `json:"joined_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	LastLoginAt  *time.Time             `json:"last_login_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.ProviderMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:              m.ID,
		ProviderID:      m.ProviderID,
		UserID:          m.UserID,
		Role:            m.Role,
		Status:          m.Status,
		TeamID:          copyUUIDPointer(m.TeamID),
		InvitedByUserID: copyUUIDPointer(m.InvitedByUserID),
		JoinedAt:        m.JoinedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ResolvedFromModel builds the capability-bearing view of a membership row.
func ResolvedFromModel(m *models.ProviderMembership) *Membership {
	if m == nil {
		return nil
	}

	return &Membership{
		MemberID:     m.ID,
		ProviderID:   m.ProviderID,
		UserID:       m.UserID,
		Role:         m.Role,
		Status:       m.Status,
		TeamID:       copyUUIDPointer(m.TeamID),
		Capabilities: DeriveCapabilities(m.Role),
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
