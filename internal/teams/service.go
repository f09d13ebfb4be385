package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type teamRepository interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Team, error)
	FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Update(ctx context.Context, team *models.Team) error
	ListRoster(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	AddRosterMember(ctx context.Context, teamID, membershipID uuid.UUID) (*models.TeamMember, error)
	RemoveRosterMember(ctx context.Context, teamID, membershipID uuid.UUID, at time.Time) (int64, error)
}

type rosterMembershipReader interface {
	GetByID(ctx context.Context, membershipID uuid.UUID) (*models.ProviderMembership, error)
	SetTeam(ctx context.Context, membershipID uuid.UUID, teamID *uuid.UUID) error
}

// Service manages teams and their rosters.
type Service interface {
	List(ctx context.Context, actor *memberships.Membership) ([]TeamDTO, error)
	Get(ctx context.Context, actor *memberships.Membership, teamID uuid.UUID) (*TeamDTO, error)
	Create(ctx context.Context, actor *memberships.Membership, input CreateTeamInput) (*TeamDTO, error)
	Update(ctx context.Context, actor *memberships.Membership, teamID uuid.UUID, input UpdateTeamInput) (*TeamDTO, error)
	Roster(ctx context.Context, actor *memberships.Membership, teamID uuid.UUID) ([]TeamMemberDTO, error)
	AddMember(ctx context.Context, actor *memberships.Membership, teamID, membershipID uuid.UUID) (*TeamMemberDTO, error)
	RemoveMember(ctx context.Context, actor *memberships.Membership, teamID, membershipID uuid.UUID) error
}

type service struct {
	repo        teamRepository
	memberships rosterMembershipReader
}

// NewService wires the teams service.
func NewService(repo teamRepository, membershipsRepo rosterMembershipReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("teams repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{repo: repo, memberships: membershipsRepo}, nil
}

// CreateTeamInput captures a new team.
type CreateTeamInput struct {
	Name                string `validate:"required"`
	Description         *string
	MaxConcurrentEvents int `validate:"gte=1"`
}

// UpdateTeamInput carries partial team edits; nil fields are untouched.
type UpdateTeamInput struct {
	Name                *string
	Description         *string
	MaxConcurrentEvents *int
	IsActive            *bool
}

func (s *service) List(ctx context.Context, actor *memberships.Membership) ([]TeamDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	rows, err := s.repo.ListByProvider(ctx, actor.ProviderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list teams")
	}
	return toDTOs(rows), nil
}

func (s *service) Get(ctx context.Context, actor *memberships.Membership, teamID uuid.UUID) (*TeamDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	team, err := s.loadTeam(ctx, actor.ProviderID, teamID)
	if err != nil {
		return nil, err
	}
	return ToDTO(team), nil
}

func (s *service) Create(ctx context.Context, actor *memberships.Membership, input CreateTeamInput) (*TeamDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanAssignBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team name is required")
	}
	if input.MaxConcurrentEvents < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max concurrent events must be at least 1")
	}

	team := &models.Team{
		ProviderID:          actor.ProviderID,
		Name:                name,
		Description:         input.Description,
		MaxConcurrentEvents: input.MaxConcurrentEvents,
		IsActive:            true,
	}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create team")
	}
	return ToDTO(team), nil
}

func (s *service) Update(ctx context.Context, actor *memberships.Membership, teamID uuid.UUID, input UpdateTeamInput) (*TeamDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanAssignBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	team, err := s.loadTeam(ctx, actor.ProviderID, teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "team name is required")
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = input.Description
	}
	if input.MaxConcurrentEvents != nil {
		if *input.MaxConcurrentEvents < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max concurrent events must be at least 1")
		}
		team.MaxConcurrentEvents = *input.MaxConcurrentEvents
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, team); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update team")
	}
	return ToDTO(team), nil
}

func (s *service) Roster(ctx context.Context, actor *memberships.Membership, teamID uuid.UUID) ([]TeamMemberDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	if _, err := s.loadTeam(ctx, actor.ProviderID, teamID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListRoster(ctx, teamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list roster")
	}
	return membersToDTOs(rows), nil
}

// AddMember places a provider membership on the team roster and mirrors the
// team onto the membership row.
func (s *service) AddMember(ctx context.Context, actor *memberships.Membership, teamID, membershipID uuid.UUID) (*TeamMemberDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanAssignBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	if _, err := s.loadTeam(ctx, actor.ProviderID, teamID); err != nil {
		return nil, err
	}

	membership, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if membership.ProviderID != actor.ProviderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}

	entry, err := s.repo.AddRosterMember(ctx, teamID, membershipID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add roster member")
	}
	if err := s.memberships.SetTeam(ctx, membershipID, &teamID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set member team")
	}
	return memberToDTO(entry), nil
}

func (s *service) RemoveMember(ctx context.Context, actor *memberships.Membership, teamID, membershipID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanAssignBookings {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	if _, err := s.loadTeam(ctx, actor.ProviderID, teamID); err != nil {
		return err
	}

	affected, err := s.repo.RemoveRosterMember(ctx, teamID, membershipID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove roster member")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "roster entry not found")
	}
	if err := s.memberships.SetTeam(ctx, membershipID, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear member team")
	}
	return nil
}

func (s *service) loadTeam(ctx context.Context, providerID, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.repo.FindByID(ctx, providerID, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load team")
	}
	return team, nil
}
