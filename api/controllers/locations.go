package controllers

import (
	"net/http"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/locations"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// ListLocations returns the provider's service locations.
func ListLocations(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "locations service unavailable"))
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

type saveLocationsRequest struct {
	Locations []locations.LocationInput `json:"locations" validate:"required,dive"`
}

// SaveLocations replaces the location set in one transaction. Exactly one
// entry must be primary.
func SaveLocations(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "locations service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body saveLocationsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.SaveAll(r.Context(), actor, body.Locations)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

// DeleteLocation removes one location; the last one can never be deleted.
func DeleteLocation(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "locations service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		locationID, ok := pathUUID(w, r, logg, "locationId")
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor, locationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
