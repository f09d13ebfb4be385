package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// InvitationDTO is the transport shape for an invitation. The raw token is
// never included; it only travels inside the invite email.
type InvitationDTO struct {
	ID              uuid.UUID        `json:"id"`
	ProviderID      uuid.UUID        `json:"provider_id"`
	Email           string           `json:"email"`
	Role            enums.MemberRole `json:"role"`
	ExpiresAt       time.Time        `json:"expires_at"`
	AcceptedAt      *time.Time       `json:"accepted_at,omitempty"`
	RevokedAt       *time.Time       `json:"revoked_at,omitempty"`
	InvitedByUserID uuid.UUID        `json:"invited_by_user_id"`
	ResendCount     int              `json:"resend_count"`
	LastSentAt      *time.Time       `json:"last_sent_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// AcceptResultDTO reports the membership minted by a successful accept.
type AcceptResultDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	ProviderID   uuid.UUID        `json:"provider_id"`
	Role         enums.MemberRole `json:"role"`
	JoinedAt     time.Time        `json:"joined_at"`
}

func ToDTO(i *models.Invitation) *InvitationDTO {
	if i == nil {
		return nil
	}

	return &InvitationDTO{
		ID:              i.ID,
		ProviderID:      i.ProviderID,
		Email:           i.Email,
		Role:            i.Role,
		ExpiresAt:       i.ExpiresAt,
		AcceptedAt:      i.AcceptedAt,
		RevokedAt:       i.RevokedAt,
		InvitedByUserID: i.InvitedByUserID,
		ResendCount:     i.ResendCount,
		LastSentAt:      i.LastSentAt,
		CreatedAt:       i.CreatedAt,
	}
}

func toDTOs(rows []models.Invitation) []InvitationDTO {
	out := make([]InvitationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
