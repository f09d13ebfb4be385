package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/caterkita/caterkita-backend/pkg/logger"
)

const auditRetentionDays = 90

// AuditRetentionJobParams configure the audit event prune.
type AuditRetentionJobParams struct {
	Logger     *logger.Logger
	Repository auditRetentionRepo
	Retention  int
}

type auditRetentionRepo interface {
	DeletePublishedBefore(cutoff time.Time) (int64, error)
}

// NewAuditRetentionJob prunes audit events that were already shipped to
// Pub/Sub. Unpublished rows are never touched.
func NewAuditRetentionJob(params AuditRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = auditRetentionDays
	}
	return &auditRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type auditRetentionJob struct {
	logg      *logger.Logger
	repo      auditRetentionRepo
	retention int
	now       func() time.Time
}

func (j *auditRetentionJob) Name() string { return "audit-retention" }

func (j *auditRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeletePublishedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("audit retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "audit retention complete")
	return nil
}
