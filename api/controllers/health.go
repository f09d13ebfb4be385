package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CaterKita-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CaterKita-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		checks["db"] = "ok"
		if dbP == nil {
			checks["db"] = "unconfigured"
			failed = true
		} else if err := dbP.Ping(ctx); err != nil {
			checks["db"] = err.Error()
			failed = true
		}

		checks["redis"] = "ok"
		if redisP == nil {
			checks["redis"] = "unconfigured"
			failed = true
		} else if err := redisP.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			failed = true
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
