package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/caterkita/caterkita-backend/api/routes"
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
	"github.com/caterkita/caterkita-backend/internal/users"
	"github.com/caterkita/caterkita-backend/pkg/audit"
	"github.com/caterkita/caterkita-backend/pkg/auth/session"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/mailer"
	"github.com/caterkita/caterkita-backend/pkg/metrics"
	"github.com/caterkita/caterkita-backend/pkg/migrate"
	"github.com/caterkita/caterkita-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var mail mailer.Mailer
	if cfg.Mailer.FromEmail != "" {
		sesMailer, err := mailer.NewSES(context.Background(), cfg.Mailer, cfg.App.SiteURL, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create ses mailer", err)
			os.Exit(1)
		}
		mail = sesMailer
	} else {
		logg.Warn(context.Background(), "ses from email not configured; invitation emails are logged only")
		mail = mailer.NewNoop(logg)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	providersRepo := providers.NewRepository(gormDB)
	membershipsRepo := memberships.NewRepository(gormDB)
	invitationsRepo := invitations.NewRepository(gormDB)
	locationsRepo := locations.NewRepository(gormDB)
	galleryRepo := gallery.NewRepository(gormDB)
	bookingsRepo := bookings.NewRepository(gormDB)
	teamsRepo := teams.NewRepository(gormDB)
	shiftsRepo := shifts.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	auditor := audit.NewService(audit.NewRepository(gormDB), logg)
	notifier := notifications.NewPublisher(notificationsRepo, logg)
	resolver := memberships.NewResolver(membershipsRepo)

	authService, err := auth.NewService(usersRepo, providersRepo, membershipsRepo, sessionManager, dbClient, cfg.JWT, cfg.Password, logg)
	exitOn(logg, "auth service", err)

	providersService, err := providers.NewService(providersRepo, auditor)
	exitOn(logg, "providers service", err)

	membersAdmin, err := memberships.NewAdminService(membershipsRepo, usersRepo, auditor, cfg.Password)
	exitOn(logg, "members admin service", err)

	invitationsService, err := invitations.NewService(invitationsRepo, usersRepo, membershipsRepo, providersRepo, dbClient, mail, auditor, notifier, cfg.Invitations, logg)
	exitOn(logg, "invitations service", err)

	locationsService, err := locations.NewService(locationsRepo, dbClient, auditor)
	exitOn(logg, "locations service", err)

	galleryService, err := gallery.NewService(galleryRepo, dbClient, auditor)
	exitOn(logg, "gallery service", err)

	bookingsService, err := bookings.NewService(bookingsRepo)
	exitOn(logg, "bookings service", err)

	assignmentService, err := teams.NewAssignmentService(teamsRepo, bookingsRepo, shiftsRepo, dbClient, auditor, notifier)
	exitOn(logg, "assignment service", err)

	teamsService, err := teams.NewService(teamsRepo, membershipsRepo)
	exitOn(logg, "teams service", err)

	shiftsService, err := shifts.NewService(shiftsRepo)
	exitOn(logg, "shifts service", err)

	notificationsService, err := notifications.NewService(notificationsRepo)
	exitOn(logg, "notifications service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Sessions:     sessionManager,
		Resolver:     resolver,
		Memberships:  membershipsRepo,
		HTTPMetrics:  httpMetrics,
		Registry:     registry,
		Auth:         authService,
		Providers:    providersService,
		MembersAdmin: membersAdmin,
		Invitations:  invitationsService,
		Locations:    locationsService,
		Bookings:     bookingsService,
		Assignments:  assignmentService,
		Teams:        teamsService,
		Shifts:       shiftsService,
		Gallery:      galleryService,
		Notifs:       notificationsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+what, err)
		os.Exit(1)
	}
}
