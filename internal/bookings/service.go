package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/pagination"
)

type bookingRepository interface {
	List(ctx context.Context, params listBookingsParams) ([]models.Booking, *pagination.Cursor, error)
	FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, providerID, id uuid.UUID, from, to enums.BookingStatus) (int64, error)
}

// Service manages the booking lifecycle short of team assignment.
type Service interface {
	List(ctx context.Context, actor *memberships.Membership, params ListParams) (*ListResult, error)
	Get(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID) (*BookingDTO, error)
	Create(ctx context.Context, actor *memberships.Membership, input CreateBookingInput) (*BookingDTO, error)
	Update(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID, input UpdateBookingInput) (*BookingDTO, error)
	ChangeStatus(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID, target enums.BookingStatus) (*BookingDTO, error)
}

type service struct {
	repo bookingRepository
}

// NewService wires the bookings service.
func NewService(repo bookingRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	return &service{repo: repo}, nil
}

// ListParams configures booking list pagination and filtering.
type ListParams struct {
	Limit  int
	Cursor string
	Status *enums.BookingStatus
}

// ListResult wraps a booking page and the cursor for the next one.
type ListResult struct {
	Items  []BookingDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// CreateBookingInput captures a new catering engagement.
type CreateBookingInput struct {
	CustomerName  string  `validate:"required"`
	CustomerEmail *string `validate:"omitempty,email"`
	CustomerPhone *string
	EventDate     *time.Time
	Venue         *string
	Headcount     int             `validate:"gte=0"`
	PricePerHead  decimal.Decimal `validate:"-"`
	MenuTags      []string
	Notes         *string
}

// UpdateBookingInput carries partial booking edits; nil fields are untouched.
type UpdateBookingInput struct {
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	EventDate     *time.Time
	Venue         *string
	Headcount     *int
	PricePerHead  *decimal.Decimal
	MenuTags      []string
	Notes         *string
}

// List pages the provider's bookings. Callers without CanViewAllBookings see
// only their team's bookings; with no team they see an empty page.
func (s *service) List(ctx context.Context, actor *memberships.Membership, params ListParams) (*ListResult, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	query := listBookingsParams{
		ProviderID: actor.ProviderID,
		Status:     params.Status,
		Limit:      params.Limit,
	}
	if !actor.Capabilities.CanViewAllBookings {
		if actor.TeamID == nil {
			return &ListResult{Items: []BookingDTO{}}, nil
		}
		query.TeamID = actor.TeamID
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: toDTOs(rows), Cursor: cursor}, nil
}

func (s *service) Get(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID) (*BookingDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}

	booking, err := s.loadBooking(ctx, actor.ProviderID, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Capabilities.CanViewAllBookings {
		if actor.TeamID == nil || booking.TeamID == nil || *actor.TeamID != *booking.TeamID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
	}
	return ToDTO(booking), nil
}

func (s *service) Create(ctx context.Context, actor *memberships.Membership, input CreateBookingInput) (*BookingDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditAllBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.Headcount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "headcount cannot be negative")
	}
	if input.PricePerHead.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per head cannot be negative")
	}

	booking := &models.Booking{
		ProviderID:      actor.ProviderID,
		CustomerName:    name,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		EventDate:       input.EventDate,
		Venue:           input.Venue,
		Headcount:       input.Headcount,
		PricePerHead:    input.PricePerHead,
		QuoteTotal:      quoteTotal(input.Headcount, input.PricePerHead),
		Status:          enums.BookingStatusPending,
		MenuTags:        input.MenuTags,
		Notes:           input.Notes,
		CreatedByUserID: actor.UserID,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}
	return ToDTO(booking), nil
}

func (s *service) Update(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID, input UpdateBookingInput) (*BookingDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditAllBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	booking, err := s.loadBooking(ctx, actor.ProviderID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("booking is %s and cannot be edited", booking.Status))
	}

	if input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
		}
		booking.CustomerName = name
	}
	if input.CustomerEmail != nil {
		booking.CustomerEmail = input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		booking.CustomerPhone = input.CustomerPhone
	}
	if input.EventDate != nil {
		booking.EventDate = input.EventDate
	}
	if input.Venue != nil {
		booking.Venue = input.Venue
	}
	if input.Headcount != nil {
		if *input.Headcount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "headcount cannot be negative")
		}
		booking.Headcount = *input.Headcount
	}
	if input.PricePerHead != nil {
		if input.PricePerHead.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per head cannot be negative")
		}
		booking.PricePerHead = *input.PricePerHead
	}
	if input.MenuTags != nil {
		booking.MenuTags = input.MenuTags
	}
	if input.Notes != nil {
		booking.Notes = input.Notes
	}
	booking.QuoteTotal = quoteTotal(booking.Headcount, booking.PricePerHead)

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
	}
	return ToDTO(booking), nil
}

// ChangeStatus moves the booking along the closed transition table. The write
// is guarded on the current status so concurrent transitions surface as a
// state conflict rather than silently overwriting each other.
func (s *service) ChangeStatus(ctx context.Context, actor *memberships.Membership, bookingID uuid.UUID, target enums.BookingStatus) (*BookingDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "membership required")
	}
	if !actor.Capabilities.CanEditAllBookings {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status")
	}

	booking, err := s.loadBooking(ctx, actor.ProviderID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move booking from %s to %s", booking.Status, target))
	}

	affected, err := s.repo.UpdateStatus(ctx, actor.ProviderID, bookingID, booking.Status, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking status changed concurrently")
	}

	booking.Status = target
	return ToDTO(booking), nil
}

func (s *service) loadBooking(ctx context.Context, providerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, providerID, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func quoteTotal(headcount int, pricePerHead decimal.Decimal) decimal.Decimal {
	return pricePerHead.Mul(decimal.NewFromInt(int64(headcount)))
}
