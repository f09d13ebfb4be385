package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caterkita/caterkita-backend/api/controllers"
	"github.com/caterkita/caterkita-backend/api/middleware"
	"github.com/caterkita/caterkita-backend/internal/auth"
	"github.com/caterkita/caterkita-backend/internal/bookings"
	"github.com/caterkita/caterkita-backend/internal/gallery"
	"github.com/caterkita/caterkita-backend/internal/invitations"
	"github.com/caterkita/caterkita-backend/internal/locations"
	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/internal/notifications"
	"github.com/caterkita/caterkita-backend/internal/providers"
	"github.com/caterkita/caterkita-backend/internal/shifts"
	"github.com/caterkita/caterkita-backend/internal/teams"
	"github.com/caterkita/caterkita-backend/pkg/auth/session"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/metrics"
	"github.com/caterkita/caterkita-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs. NewRouter does no wiring
// of its own; cmd/api owns construction order.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Sessions     session.AccessSessionChecker
	Resolver     middleware.MembershipResolver
	Memberships  *memberships.Repository
	HTTPMetrics  *metrics.HTTPMetrics
	Registry     *prometheus.Registry
	Auth         auth.Service
	Providers    providers.Service
	MembersAdmin memberships.AdminService
	Invitations  invitations.Service
	Locations    locations.Service
	Bookings     bookings.Service
	Assignments  teams.AssignmentService
	Teams        teams.Service
	Shifts       shifts.Service
	Gallery      gallery.Service
	Notifs       notifications.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	resendPolicy := middleware.NewInviteRateLimitPolicy(
		"invite-resend",
		cfg.InviteRateLimit.ResendWindow,
		cfg.InviteRateLimit.ResendLimit,
		0,
	)
	adminCreatePolicy := middleware.NewInviteRateLimitPolicy(
		"member-create",
		cfg.InviteRateLimit.AdminCreateWindow,
		0,
		cfg.InviteRateLimit.AdminCreateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/providers", controllers.PublicProviders(d.Providers, logg))
		r.Get("/providers/{slug}", controllers.PublicProviderBySlug(d.Providers, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
		// Refresh accepts an expired access token; it stays outside Auth.
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		// Provider-unscoped: session and invitation acceptance work before a
		// provider scope exists.
		r.Post("/v1/auth/logout", controllers.AuthLogout(d.Auth, logg))
		r.Post("/v1/auth/switch-provider", controllers.AuthSwitchProvider(d.Auth, logg))
		r.Get("/v1/me/memberships", controllers.MyMemberships(d.Memberships, logg))
		r.Post("/v1/invitations/accept", controllers.AcceptInvitation(d.Invitations, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.ProviderContext(logg))

			r.Route("/v1/providers/me", func(r chi.Router) {
				r.With(middleware.RequireMembership(d.Resolver, logg)).Get("/", controllers.ProviderProfile(d.Providers, logg))
				r.With(canEditSettings(d.Resolver, logg)).Patch("/", controllers.ProviderUpdate(d.Providers, logg))
			})

			r.Route("/v1/members", func(r chi.Router) {
				r.With(middleware.RequireMembership(d.Resolver, logg)).Get("/", controllers.ListMembers(d.MembersAdmin, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(d.Resolver, logg, func(c memberships.Capabilities) bool { return c.CanManageRoles }))
					r.With(middleware.InviteRateLimit(adminCreatePolicy, d.Redis, logg)).Post("/", controllers.CreateMember(d.MembersAdmin, logg))
					r.Patch("/{membershipId}/role", controllers.ChangeMemberRole(d.MembersAdmin, logg))
					r.Post("/{membershipId}/suspend", controllers.SuspendMember(d.MembersAdmin, logg))
					r.Post("/{membershipId}/reactivate", controllers.ReactivateMember(d.MembersAdmin, logg))
				})
				r.With(middleware.RequireCapability(d.Resolver, logg, func(c memberships.Capabilities) bool { return c.CanRemoveMembers })).
					Delete("/{membershipId}", controllers.RemoveMember(d.MembersAdmin, logg))
			})

			r.Route("/v1/invitations", func(r chi.Router) {
				r.Use(middleware.RequireCapability(d.Resolver, logg, func(c memberships.Capabilities) bool { return c.CanInviteMembers }))
				r.Get("/", controllers.ListInvitations(d.Invitations, logg))
				r.Post("/", controllers.CreateInvitation(d.Invitations, logg))
				r.With(middleware.InviteRateLimit(resendPolicy, d.Redis, logg)).Post("/{invitationId}/resend", controllers.ResendInvitation(d.Invitations, logg))
				r.Delete("/{invitationId}", controllers.RevokeInvitation(d.Invitations, logg))
			})

			r.Route("/v1/locations", func(r chi.Router) {
				r.With(middleware.RequireMembership(d.Resolver, logg)).Get("/", controllers.ListLocations(d.Locations, logg))
				r.Group(func(r chi.Router) {
					r.Use(canEditSettings(d.Resolver, logg))
					r.Put("/", controllers.SaveLocations(d.Locations, logg))
					r.Delete("/{locationId}", controllers.DeleteLocation(d.Locations, logg))
				})
			})

			r.Route("/v1/gallery", func(r chi.Router) {
				r.With(middleware.RequireMembership(d.Resolver, logg)).Get("/", controllers.ListGallery(d.Gallery, logg))
				r.Group(func(r chi.Router) {
					r.Use(canEditSettings(d.Resolver, logg))
					r.Put("/", controllers.SaveGallery(d.Gallery, logg))
					r.Delete("/{imageId}", controllers.DeleteGalleryImage(d.Gallery, logg))
				})
			})

			// Booking visibility and edit rights are enforced in the service;
			// the router only guarantees a seeded membership.
			r.Route("/v1/bookings", func(r chi.Router) {
				r.Use(middleware.RequireMembership(d.Resolver, logg))
				r.Get("/", controllers.ListBookings(d.Bookings, logg))
				r.Post("/", controllers.CreateBooking(d.Bookings, logg))
				r.Get("/{bookingId}", controllers.GetBooking(d.Bookings, logg))
				r.Patch("/{bookingId}", controllers.UpdateBooking(d.Bookings, logg))
				r.Post("/{bookingId}/status", controllers.ChangeBookingStatus(d.Bookings, logg))
				r.Post("/{bookingId}/assign", controllers.AssignBookingTeam(d.Assignments, logg))
			})

			r.Route("/v1/teams", func(r chi.Router) {
				r.Use(middleware.RequireMembership(d.Resolver, logg))
				r.Get("/", controllers.ListTeams(d.Teams, logg))
				r.Post("/", controllers.CreateTeam(d.Teams, logg))
				r.Get("/{teamId}", controllers.GetTeam(d.Teams, logg))
				r.Patch("/{teamId}", controllers.UpdateTeam(d.Teams, logg))
				r.Get("/{teamId}/roster", controllers.TeamRoster(d.Teams, logg))
				r.Post("/{teamId}/roster/{membershipId}", controllers.AddTeamMember(d.Teams, logg))
				r.Delete("/{teamId}/roster/{membershipId}", controllers.RemoveTeamMember(d.Teams, logg))
			})

			r.Route("/v1/shifts", func(r chi.Router) {
				r.Use(middleware.RequireMembership(d.Resolver, logg))
				r.Get("/me", controllers.MyShifts(d.Shifts, logg))
				r.Post("/{shiftId}/check-in", controllers.ShiftCheckIn(d.Shifts, logg))
				r.Post("/{shiftId}/check-out", controllers.ShiftCheckOut(d.Shifts, logg))
			})

			r.Route("/v1/notifications", func(r chi.Router) {
				r.Use(middleware.RequireMembership(d.Resolver, logg))
				r.Get("/", controllers.ListNotifications(d.Notifs, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.Notifs, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifs, logg))
			})
		})
	})

	return r
}

func canEditSettings(resolver middleware.MembershipResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return middleware.RequireCapability(resolver, logg, func(c memberships.Capabilities) bool { return c.CanEditProviderSettings })
}
