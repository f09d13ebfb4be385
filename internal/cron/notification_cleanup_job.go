package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/caterkita/caterkita-backend/pkg/logger"
)

const defaultNotificationMaxAge = 90 * 24 * time.Hour

// NotificationCleanupJobParams configure the notification prune.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationsCleanupRepo
	MaxAge     time.Duration
}

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewNotificationCleanupJob prunes in-app notifications past their retention.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultNotificationMaxAge
	}
	return &notificationCleanupJob{
		logg:   params.Logger,
		repo:   params.Repository,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg   *logger.Logger
	repo   notificationsCleanupRepo
	maxAge time.Duration
	now    func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
