package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/bookings"
	"github.com/caterkita/caterkita-backend/internal/teams"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/types"
)

// ListBookings pages the provider's bookings. Staff without a team get an
// empty page.
func ListBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		params := bookings.ListParams{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.BookingStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		result, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetBooking returns one booking within the caller's visibility.
func GetBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		bookingID, ok := pathUUID(w, r, logg, "bookingId")
		if !ok {
			return
		}

		booking, err := svc.Get(r.Context(), actor, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

type createBookingRequest struct {
	CustomerName  string          `json:"customer_name" validate:"required"`
	CustomerEmail *string         `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	EventDate     *time.Time      `json:"event_date,omitempty"`
	Venue         *string         `json:"venue,omitempty"`
	Headcount     int             `json:"headcount" validate:"gte=0"`
	PricePerHead  decimal.Decimal `json:"price_per_head"`
	MenuTags      []string        `json:"menu_tags,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// CreateBooking opens a pending booking and computes the quote total.
func CreateBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), actor, bookings.CreateBookingInput{
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			CustomerPhone: body.CustomerPhone,
			EventDate:     body.EventDate,
			Venue:         body.Venue,
			Headcount:     body.Headcount,
			PricePerHead:  body.PricePerHead,
			MenuTags:      body.MenuTags,
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type updateBookingRequest struct {
	CustomerName  *string          `json:"customer_name,omitempty"`
	CustomerEmail *string          `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone *string          `json:"customer_phone,omitempty"`
	EventDate     *time.Time       `json:"event_date,omitempty"`
	Venue         *string          `json:"venue,omitempty"`
	Headcount     *int             `json:"headcount,omitempty" validate:"omitempty,gte=0"`
	PricePerHead  *decimal.Decimal `json:"price_per_head,omitempty"`
	MenuTags      []string         `json:"menu_tags,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// UpdateBooking applies partial edits; terminal bookings reject edits.
func UpdateBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		bookingID, ok := pathUUID(w, r, logg, "bookingId")
		if !ok {
			return
		}

		var body updateBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), actor, bookingID, bookings.UpdateBookingInput{
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			CustomerPhone: body.CustomerPhone,
			EventDate:     body.EventDate,
			Venue:         body.Venue,
			Headcount:     body.Headcount,
			PricePerHead:  body.PricePerHead,
			MenuTags:      body.MenuTags,
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type changeBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ChangeBookingStatus walks the booking through its status machine.
func ChangeBookingStatus(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		bookingID, ok := pathUUID(w, r, logg, "bookingId")
		if !ok {
			return
		}

		var body changeBookingStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target := enums.BookingStatus(body.Status)
		if !target.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
			return
		}

		updated, err := svc.ChangeStatus(r.Context(), actor, bookingID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type assignTeamRequest struct {
	TeamID types.NullableUUID `json:"team_id"`
}

// AssignBookingTeam assigns (or clears, with an explicit null team_id) the
// booking's team, creating shifts for the roster. An omitted team_id is
// rejected so a sparse payload cannot silently clear an assignment.
func AssignBookingTeam(svc teams.AssignmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		bookingID, ok := pathUUID(w, r, logg, "bookingId")
		if !ok {
			return
		}

		var body assignTeamRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !body.TeamID.Present {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "team_id is required; send null to clear the assignment"))
			return
		}

		result, err := svc.AssignTeam(r.Context(), actor, bookingID, body.TeamID.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
