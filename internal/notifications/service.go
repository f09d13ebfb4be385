package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/pagination"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, providerID, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, providerID, userID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for notifications.
type ListParams struct {
	ProviderID uuid.UUID
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ProviderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "active provider id required")
	}

	query := listNotificationsParams{
		ProviderID: params.ProviderID,
		UserID:     params.UserID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, providerID, userID, notificationID uuid.UUID) error {
	if providerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, providerID, userID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, providerID, userID uuid.UUID) (int64, error) {
	if providerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	count, err := s.repo.MarkAllRead(ctx, providerID, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// EnqueueInput is one in-app notification queued by a domain service.
type EnqueueInput struct {
	ProviderID      uuid.UUID
	RecipientUserID *uuid.UUID
	Type            enums.NotificationType
	Title           string
	Message         string
	Link            *string
}

// Publisher writes notifications best-effort; failures are logged and never
// surfaced to the triggering request.
type Publisher struct {
	repo Repository
	logg *logger.Logger
}

// NewPublisher wires the best-effort notification writer.
func NewPublisher(repo Repository, logg *logger.Logger) *Publisher {
	return &Publisher{repo: repo, logg: logg}
}

// Enqueue persists an in-app notification, swallowing failures.
func (p *Publisher) Enqueue(ctx context.Context, input EnqueueInput) {
	if p == nil || p.repo == nil {
		return
	}
	if input.ProviderID == uuid.Nil || !input.Type.IsValid() {
		return
	}

	row := &models.Notification{
		ProviderID:      input.ProviderID,
		RecipientUserID: input.RecipientUserID,
		Type:            input.Type,
		Title:           input.Title,
		Message:         input.Message,
		Link:            input.Link,
	}
	if err := p.repo.Create(ctx, row); err != nil && p.logg != nil {
		fields := map[string]any{
			"provider_id": input.ProviderID.String(),
			"type":        string(input.Type),
			"error":       err.Error(),
		}
		p.logg.Warn(p.logg.WithFields(ctx, fields), "notification dropped")
	}
}
