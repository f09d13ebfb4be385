package middleware

import (
	"context"

	"github.com/caterkita/caterkita-backend/internal/memberships"
)

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxRole       contextKey = "actor_role"
	ctxProviderID contextKey = "provider_id"
	ctxAccessID   contextKey = "access_id"
	ctxMembership contextKey = "membership"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func ProviderIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxProviderID).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the presented access token, used
// when revoking or re-minting the session.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithAccessID injects the access token identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// MembershipFromContext returns the resolved membership seeded by
// RequireCapability, or nil outside a capability-gated route.
func MembershipFromContext(ctx context.Context) *memberships.Membership {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxMembership).(*memberships.Membership); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithProviderID injects the provider identifier into the context for
// downstream handlers.
func WithProviderID(ctx context.Context, providerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxProviderID, providerID)
}

// WithMembership stashes the resolved membership for downstream handlers.
func WithMembership(ctx context.Context, m *memberships.Membership) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMembership, m)
}
