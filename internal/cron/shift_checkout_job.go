package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/caterkita/caterkita-backend/pkg/logger"
)

const defaultShiftCheckoutCutoff = 18 * time.Hour

// ShiftCheckoutJobParams configure the stale shift sweep.
type ShiftCheckoutJobParams struct {
	Logger     *logger.Logger
	Repository shiftAutoCheckouter
	Cutoff     time.Duration
}

type shiftAutoCheckouter interface {
	AutoCheckoutStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewShiftCheckoutJob checks out shifts whose members never tapped out,
// using the scheduled end (or start when no end was set) plus the cutoff.
func NewShiftCheckoutJob(params ShiftCheckoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("shifts repository required")
	}
	cutoff := params.Cutoff
	if cutoff <= 0 {
		cutoff = defaultShiftCheckoutCutoff
	}
	return &shiftCheckoutJob{
		logg:   params.Logger,
		repo:   params.Repository,
		cutoff: cutoff,
		now:    time.Now,
	}, nil
}

type shiftCheckoutJob struct {
	logg   *logger.Logger
	repo   shiftAutoCheckouter
	cutoff time.Duration
	now    func() time.Time
}

func (j *shiftCheckoutJob) Name() string { return "shift-auto-checkout" }

func (j *shiftCheckoutJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.cutoff)
	checkedOut, err := j.repo.AutoCheckoutStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("shift auto-checkout: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":           cutoff,
		"rows_checked_out": checkedOut,
	})
	j.logg.Info(logCtx, "shift auto-checkout complete")
	return nil
}
