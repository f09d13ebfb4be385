package teams

import (
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

// TeamDTO is the transport shape for a team.
type TeamDTO struct {
	ID                  uuid.UUID `json:"id"`
	ProviderID          uuid.UUID `json:"provider_id"`
	Name                string    `json:"name"`
	Description         *string   `json:"description,omitempty"`
	MaxConcurrentEvents int       `json:"max_concurrent_events"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TeamMemberDTO is one roster entry.
type TeamMemberDTO struct {
	ID           uuid.UUID  `json:"id"`
	TeamID       uuid.UUID  `json:"team_id"`
	MembershipID uuid.UUID  `json:"membership_id"`
	IsActive     bool       `json:"is_active"`
	RemovedAt    *time.Time `json:"removed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToDTO(team *models.Team) *TeamDTO {
	if team == nil {
		return nil
	}

	return &TeamDTO{
		ID:                  team.ID,
		ProviderID:          team.ProviderID,
		Name:                team.Name,
		Description:         team.Description,
		MaxConcurrentEvents: team.MaxConcurrentEvents,
		IsActive:            team.IsActive,
		CreatedAt:           team.CreatedAt,
		UpdatedAt:           team.UpdatedAt,
	}
}

func toDTOs(rows []models.Team) []TeamDTO {
	out := make([]TeamDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}

func memberToDTO(m *models.TeamMember) *TeamMemberDTO {
	if m == nil {
		return nil
	}

	return &TeamMemberDTO{
		ID:           m.ID,
		TeamID:       m.TeamID,
		MembershipID: m.MembershipID,
		IsActive:     m.IsActive,
		RemovedAt:    m.RemovedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func membersToDTOs(rows []models.TeamMember) []TeamMemberDTO {
	out := make([]TeamMemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *memberToDTO(&rows[i]))
	}
	return out
}
