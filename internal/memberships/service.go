package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/pkg/db/models"
)

type membershipReader interface {
	GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error)
	FirstActiveMembership(ctx context.Context, userID uuid.UUID) (*models.ProviderMembership, error)
}

// Resolver turns an authenticated user + optional provider scope into the
// resolved membership the rest of the pipeline consumes.
type Resolver struct {
	repo membershipReader
}

// NewResolver wires the resolver to a membership reader.
func NewResolver(repo membershipReader) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the caller's active membership for the provider, or their
// oldest active membership when providerID is nil. A missing or non-active
// row resolves to nil without error; the caller decides how to fail.
func (s *Resolver) Resolve(ctx context.Context, userID uuid.UUID, providerID *uuid.UUID) (*Membership, error) {
	if userID == uuid.Nil {
		return nil, nil
	}

	var (
		row *models.ProviderMembership
		err error
	)
	if providerID != nil {
		row, err = s.repo.GetActiveMembership(ctx, userID, *providerID)
	} else {
		row, err = s.repo.FirstActiveMembership(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return ResolvedFromModel(row), nil
}
