package controllers

import (
	"net/http"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/gallery"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// ListGallery returns the provider's gallery in display order.
func ListGallery(svc gallery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
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

type saveGalleryRequest struct {
	Images []gallery.ImageInput `json:"images" validate:"required,dive"`
}

// SaveGallery replaces the gallery; payload order becomes display order.
func SaveGallery(svc gallery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body saveGalleryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.SaveAll(r.Context(), actor, body.Images)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

// DeleteGalleryImage removes a single image.
func DeleteGalleryImage(svc gallery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		imageID, ok := pathUUID(w, r, logg, "imageId")
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
