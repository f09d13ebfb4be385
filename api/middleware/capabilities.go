package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/internal/memberships"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// MembershipResolver resolves the caller's active membership within the
// current provider scope.
type MembershipResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, providerID *uuid.UUID) (*memberships.Membership, error)
}

// Capability selects a single flag off the derived capability set.
type Capability func(memberships.Capabilities) bool

// RequireCapability resolves the caller's membership, checks the selected
// capability and seeds the membership into the request context on success.
func RequireCapability(resolver MembershipResolver, logg *logger.Logger, capability Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			member, ok := resolveMember(w, r, resolver, logg)
			if !ok {
				return
			}

			if capability != nil && !capability(member.Capabilities) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithMembership(r.Context(), member)))
		})
	}
}

// RequireMembership resolves and seeds the caller's membership without
// gating on a capability; handlers apply their own scoping rules.
func RequireMembership(resolver MembershipResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			member, ok := resolveMember(w, r, resolver, logg)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithMembership(r.Context(), member)))
		})
	}
}

func resolveMember(w http.ResponseWriter, r *http.Request, resolver MembershipResolver, logg *logger.Logger) (*memberships.Membership, bool) {
	ctx := r.Context()
	if resolver == nil {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership resolver unavailable"))
		return nil, false
	}

	userID := UserIDFromContext(ctx)
	if userID == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return nil, false
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
		return nil, false
	}

	var pid *uuid.UUID
	if providerID := ProviderIDFromContext(ctx); providerID != "" {
		parsed, err := uuid.Parse(providerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid provider id"))
			return nil, false
		}
		pid = &parsed
	}

	member, err := resolver.Resolve(ctx, uid, pid)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership"))
		return nil, false
	}
	if member == nil {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "no active membership"))
		return nil, false
	}

	return member, true
}
