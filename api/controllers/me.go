package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/api/middleware"
	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/internal/memberships"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

type userProvidersLister interface {
	ListUserProviders(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithProvider, error)
}

// MyMemberships lists every provider the caller belongs to, regardless of the
// token's active scope.
func MyMemberships(repo userProvidersLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships repository unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		rows, err := repo.ListUserProviders(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
