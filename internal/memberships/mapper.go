package memberships

import (
	"time"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

type membershipWithProviderRow struct {
	models.ProviderMembership
	ProviderName string `gorm:"column:provider_name"`
	ProviderSlug string `gorm:"column:provider_slug"`
}

func membershipWithProviderFromRow(row membershipWithProviderRow) MembershipWithProvider {
	return MembershipWithProvider{
		MembershipID:    row.ID,
		ProviderID:      row.ProviderID,
		UserID:          row.UserID,
		ProviderName:    row.ProviderName,
		ProviderSlug:    row.ProviderSlug,
		Role:            row.Role,
		Status:          row.Status,
		InvitedByUserID: copyUUIDPointer(row.InvitedByUserID),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithProviderRow) []MembershipWithProvider {
	out := make([]MembershipWithProvider, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithProviderFromRow(row))
	}
	return out
}

type providerMemberRow struct {
	models.ProviderMembership
	Email       string     `gorm:"column:email"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func providerMembersFromRows(rows []providerMemberRow) []ProviderMemberDTO {
	out := make([]ProviderMemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProviderMemberDTO{
			MembershipID: row.ID,
			ProviderID:   row.ProviderID,
			UserID:       row.UserID,
			Email:        row.Email,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Role:         row.Role,
			Status:       row.Status,
			TeamID:       copyUUIDPointer(row.TeamID),
			JoinedAt:     row.JoinedAt,
			CreatedAt:    row.CreatedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
