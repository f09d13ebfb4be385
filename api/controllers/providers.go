package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/providers"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/types"
)

// ProviderProfile returns the caller's active provider profile.
func ProviderProfile(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "providers service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		profile, err := svc.GetByID(r.Context(), actor.ProviderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type updateProviderRequest struct {
	Name               *string                `json:"name,omitempty"`
	Description        *string                `json:"description,omitempty"`
	IsVisible          *bool                  `json:"is_visible,omitempty"`
	Phone              *string                `json:"phone,omitempty"`
	Email              *string                `json:"email,omitempty" validate:"omitempty,email"`
	Address            *types.Address         `json:"address,omitempty"`
	Social             *types.Social          `json:"social,omitempty"`
	LogoURL            *string                `json:"logo_url,omitempty"`
	BannerURL          *string                `json:"banner_url,omitempty"`
	BannerTransform    *types.BannerTransform `json:"banner_transform,omitempty"`
	Cuisines           *[]string              `json:"cuisines,omitempty"`
	MaxGuests          *int                   `json:"max_guests,omitempty" validate:"omitempty,gte=0"`
	AdvanceBookingDays *int                   `json:"advance_booking_days,omitempty" validate:"omitempty,gte=0"`
}

// ProviderUpdate applies partial edits to the provider profile.
func ProviderUpdate(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "providers service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body updateProviderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), actor, providers.UpdateProviderInput{
			Name:               body.Name,
			Description:        body.Description,
			IsVisible:          body.IsVisible,
			Phone:              body.Phone,
			Email:              body.Email,
			Address:            body.Address,
			Social:             body.Social,
			LogoURL:            body.LogoURL,
			BannerURL:          body.BannerURL,
			BannerTransform:    body.BannerTransform,
			Cuisines:           body.Cuisines,
			MaxGuests:          body.MaxGuests,
			AdvanceBookingDays: body.AdvanceBookingDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// PublicProviders lists visible providers for the public directory.
func PublicProviders(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "providers service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListVisible(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// PublicProviderBySlug returns a single public provider profile.
func PublicProviderBySlug(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "providers service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		profile, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
