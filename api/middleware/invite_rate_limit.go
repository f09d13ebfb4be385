package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"

	"github.com/caterkita/caterkita-backend/api/responses"
)

// InviteRateLimitPolicy throttles invitation traffic per target resource and
// per provider. Blocked responses carry Retry-After and X-RateLimit-*
// headers so dashboards can back off cleanly.
type InviteRateLimitPolicy struct {
	name          string
	window        time.Duration
	resourceLimit int
	providerLimit int
}

// NewInviteRateLimitPolicy builds a policy with the supplied window and limits.
func NewInviteRateLimitPolicy(name string, window time.Duration, resourceLimit, providerLimit int) InviteRateLimitPolicy {
	return InviteRateLimitPolicy{
		name:          strings.ToLower(strings.TrimSpace(name)),
		window:        window,
		resourceLimit: resourceLimit,
		providerLimit: providerLimit,
	}
}

func (p InviteRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.resourceLimit > 0 || p.providerLimit > 0)
}

func (p InviteRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "invite"
	}
	return p.name
}

func (p InviteRateLimitPolicy) resourceKey(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("rl:invite:%s:resource:%s", p.normalizedName(), id)
}

func (p InviteRateLimitPolicy) providerKey(providerID string) string {
	if providerID == "" {
		return ""
	}
	return fmt.Sprintf("rl:invite:%s:provider:%s", p.normalizedName(), providerID)
}

// InviteRateLimit enforces per-resource and per-provider counters for
// invitation resends and admin member creation. The resource scope binds to
// the {id} route param when present, otherwise to the acting user.
func InviteRateLimit(policy InviteRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.providerLimit > 0 {
				if key := policy.providerKey(ProviderIDFromContext(ctx)); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.providerLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondInviteRateLimited(ctx, logg, w, policy, "provider", count, policy.providerLimit)
						return
					}
				}
			}

			if policy.resourceLimit > 0 {
				resource := chi.URLParam(r, "id")
				if resource == "" {
					resource = UserIDFromContext(ctx)
				}
				if key := policy.resourceKey(resource); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.resourceLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondInviteRateLimited(ctx, logg, w, policy, "resource", count, policy.resourceLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondInviteRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy InviteRateLimitPolicy, scope string, count int64, limit int) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "invite.rate_limit.blocked")
	}
	setRateLimitHeaders(w, limit, count, policy.window)
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}
