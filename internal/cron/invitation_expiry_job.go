package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// InvitationExpiryJobParams configure the invitation sweep.
type InvitationExpiryJobParams struct {
	Logger     *logger.Logger
	Repository invitationExpirer
	Grace      time.Duration
}

type invitationExpirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewInvitationExpiryJob revokes pending invitations whose expiry has
// passed. Accept still rejects expired tokens on its own; the sweep just
// keeps the pending list honest.
func NewInvitationExpiryJob(params InvitationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("invitations repository required")
	}
	return &invitationExpiryJob{
		logg:  params.Logger,
		repo:  params.Repository,
		grace: params.Grace,
		now:   time.Now,
	}, nil
}

type invitationExpiryJob struct {
	logg  *logger.Logger
	repo  invitationExpirer
	grace time.Duration
	now   func() time.Time
}

func (j *invitationExpiryJob) Name() string { return "invitation-expiry" }

func (j *invitationExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	revoked, err := j.repo.ExpireStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("invitation expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_revoked": revoked,
	})
	j.logg.Info(logCtx, "invitation expiry complete")
	return nil
}
