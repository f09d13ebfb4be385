package teams

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
)

type stubTeamRepo struct {
	teams   map[uuid.UUID]*models.Team
	roster  []models.TeamMember
	added   []uuid.UUID
	removed int64
}

func newStubTeamRepo() *stubTeamRepo {
	return &stubTeamRepo{teams: map[uuid.UUID]*models.Team{}, removed: 1}
}

func (s *stubTeamRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Team, error) {
	var out []models.Team
	for _, team := range s.teams {
		if team.ProviderID == providerID {
			out = append(out, *team)
		}
	}
	return out, nil
}

func (s *stubTeamRepo) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Team, error) {
	if team, ok := s.teams[id]; ok && team.ProviderID == providerID {
		copied := *team
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTeamRepo) Create(ctx context.Context, team *models.Team) error {
	team.ID = uuid.New()
	s.teams[team.ID] = team
	return nil
}

func (s *stubTeamRepo) Update(ctx context.Context, team *models.Team) error {
	s.teams[team.ID] = team
	return nil
}

func (s *stubTeamRepo) ListRoster(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	return s.roster, nil
}

func (s *stubTeamRepo) AddRosterMember(ctx context.Context, teamID, membershipID uuid.UUID) (*models.TeamMember, error) {
	s.added = append(s.added, membershipID)
	return &models.TeamMember{ID: uuid.New(), TeamID: teamID, MembershipID: membershipID, IsActive: true}, nil
}

func (s *stubTeamRepo) RemoveRosterMember(ctx context.Context, teamID, membershipID uuid.UUID, at time.Time) (int64, error) {
	return s.removed, nil
}

type stubRosterMemberships struct {
	byID     map[uuid.UUID]*models.ProviderMembership
	setTeams map[uuid.UUID]*uuid.UUID
}

func (s *stubRosterMemberships) GetByID(ctx context.Context, membershipID uuid.UUID) (*models.ProviderMembership, error) {
	if m, ok := s.byID[membershipID]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRosterMemberships) SetTeam(ctx context.Context, membershipID uuid.UUID, teamID *uuid.UUID) error {
	s.setTeams[membershipID] = teamID
	return nil
}

func newTeamsFixture(t *testing.T) (*stubTeamRepo, *stubRosterMemberships, Service) {
	t.Helper()
	repo := newStubTeamRepo()
	membershipsRepo := &stubRosterMemberships{
		byID:     map[uuid.UUID]*models.ProviderMembership{},
		setTeams: map[uuid.UUID]*uuid.UUID{},
	}
	svc, err := NewService(repo, membershipsRepo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return repo, membershipsRepo, svc
}

func TestCreateTeam(t *testing.T) {
	_, _, svc := newTeamsFixture(t)
	actor := supervisorActor(uuid.New())

	dto, err := svc.Create(context.Background(), actor, CreateTeamInput{
		Name:                " Events crew ",
		MaxConcurrentEvents: 2,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if dto.Name != "Events crew" {
		t.Fatalf("name not trimmed: %q", dto.Name)
	}
	if !dto.IsActive {
		t.Fatal("new teams start active")
	}
}

func TestCreateTeamInvalidCapacity(t *testing.T) {
	_, _, svc := newTeamsFixture(t)
	actor := supervisorActor(uuid.New())

	_, err := svc.Create(context.Background(), actor, CreateTeamInput{Name: "Crew", MaxConcurrentEvents: 0})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddMemberMirrorsTeamOntoMembership(t *testing.T) {
	repo, membershipsRepo, svc := newTeamsFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)

	team := &models.Team{ID: uuid.New(), ProviderID: providerID, Name: "Crew", MaxConcurrentEvents: 1, IsActive: true}
	repo.teams[team.ID] = team
	membership := &models.ProviderMembership{ID: uuid.New(), ProviderID: providerID, Role: enums.MemberRoleStaff}
	membershipsRepo.byID[membership.ID] = membership

	entry, err := svc.AddMember(context.Background(), actor, team.ID, membership.ID)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if entry.MembershipID != membership.ID {
		t.Fatalf("unexpected roster entry %+v", entry)
	}
	if got := membershipsRepo.setTeams[membership.ID]; got == nil || *got != team.ID {
		t.Fatal("membership team_id must mirror the roster")
	}
}

func TestAddMemberCrossProviderNotFound(t *testing.T) {
	repo, membershipsRepo, svc := newTeamsFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)

	team := &models.Team{ID: uuid.New(), ProviderID: providerID, Name: "Crew", MaxConcurrentEvents: 1, IsActive: true}
	repo.teams[team.ID] = team
	foreign := &models.ProviderMembership{ID: uuid.New(), ProviderID: uuid.New()}
	membershipsRepo.byID[foreign.ID] = foreign

	_, err := svc.AddMember(context.Background(), actor, team.ID, foreign.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveMemberClearsMembershipTeam(t *testing.T) {
	repo, membershipsRepo, svc := newTeamsFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)

	team := &models.Team{ID: uuid.New(), ProviderID: providerID, Name: "Crew", MaxConcurrentEvents: 1, IsActive: true}
	repo.teams[team.ID] = team
	membershipID := uuid.New()

	if err := svc.RemoveMember(context.Background(), actor, team.ID, membershipID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if got, ok := membershipsRepo.setTeams[membershipID]; !ok || got != nil {
		t.Fatal("membership team_id must be cleared")
	}
}

func TestRemoveMemberMissingEntry(t *testing.T) {
	repo, _, svc := newTeamsFixture(t)
	providerID := uuid.New()
	actor := supervisorActor(providerID)
	team := &models.Team{ID: uuid.New(), ProviderID: providerID, Name: "Crew", MaxConcurrentEvents: 1, IsActive: true}
	repo.teams[team.ID] = team
	repo.removed = 0

	err := svc.RemoveMember(context.Background(), actor, team.ID, uuid.New())
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
