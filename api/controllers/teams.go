package controllers

import (
	"net/http"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/teams"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// ListTeams returns every team under the provider.
func ListTeams(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetTeam returns one team.
func GetTeam(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		teamID, ok := pathUUID(w, r, logg, "teamId")
		if !ok {
			return
		}

		team, err := svc.Get(r.Context(), actor, teamID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, team)
	}
}

type createTeamRequest struct {
	Name                string  `json:"name" validate:"required"`
	Description         *string `json:"description,omitempty"`
	MaxConcurrentEvents int     `json:"max_concurrent_events" validate:"gte=1"`
}

// CreateTeam adds a team with its concurrency capacity.
func CreateTeam(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body createTeamRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), actor, teams.CreateTeamInput{
			Name:                body.Name,
			Description:         body.Description,
			MaxConcurrentEvents: body.MaxConcurrentEvents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type updateTeamRequest struct {
	Name                *string `json:"name,omitempty"`
	Description         *string `json:"description,omitempty"`
	MaxConcurrentEvents *int    `json:"max_concurrent_events,omitempty" validate:"omitempty,gte=1"`
	IsActive            *bool   `json:"is_active,omitempty"`
}

// UpdateTeam applies partial team edits.
func UpdateTeam(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		teamID, ok := pathUUID(w, r, logg, "teamId")
		if !ok {
			return
		}

		var body updateTeamRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), actor, teamID, teams.UpdateTeamInput{
			Name:                body.Name,
			Description:         body.Description,
			MaxConcurrentEvents: body.MaxConcurrentEvents,
			IsActive:            body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TeamRoster lists the team's current members.
func TeamRoster(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		teamID, ok := pathUUID(w, r, logg, "teamId")
		if !ok {
			return
		}

		roster, err := svc.Roster(r.Context(), actor, teamID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}

// AddTeamMember puts a membership on the roster. A member belongs to at most
// one team at a time.
func AddTeamMember(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		teamID, ok := pathUUID(w, r, logg, "teamId")
		if !ok {
			return
		}
		membershipID, ok := pathUUID(w, r, logg, "membershipId")
		if !ok {
			return
		}

		added, err := svc.AddMember(r.Context(), actor, teamID, membershipID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, added)
	}
}

// RemoveTeamMember takes a membership off the roster.
func RemoveTeamMember(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "teams service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		teamID, ok := pathUUID(w, r, logg, "teamId")
		if !ok {
			return
		}
		membershipID, ok := pathUUID(w, r, logg, "membershipId")
		if !ok {
			return
		}

		if err := svc.RemoveMember(r.Context(), actor, teamID, membershipID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
