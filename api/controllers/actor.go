package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/api/middleware"
	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/internal/memberships"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// actorFromContext pulls the membership seeded by the capability middleware.
// Handlers behind RequireMembership/RequireCapability can rely on it.
func actorFromContext(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*memberships.Membership, bool) {
	member := middleware.MembershipFromContext(r.Context())
	if member == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "no active membership"))
		return nil, false
	}
	return member, true
}

// pathUUID parses a uuid route parameter, writing a validation error on
// failure.
func pathUUID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}
