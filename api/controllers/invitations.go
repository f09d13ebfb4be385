package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/api/middleware"
	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/invitations"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// CreateInvitation issues a pending invite and emails the token.
func CreateInvitation(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitations service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body createInvitationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), actor, invitations.CreateInvitationInput{
			Email: body.Email,
			Role:  enums.MemberRole(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListInvitations returns the provider's invitations, newest first.
func ListInvitations(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitations service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ResendInvitation rotates the token and re-sends the invite email.
func ResendInvitation(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitations service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		invitationID, ok := pathUUID(w, r, logg, "invitationId")
		if !ok {
			return
		}

		updated, err := svc.Resend(r.Context(), actor, invitationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// RevokeInvitation cancels a pending invite.
func RevokeInvitation(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitations service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		invitationID, ok := pathUUID(w, r, logg, "invitationId")
		if !ok {
			return
		}

		if err := svc.Revoke(r.Context(), actor, invitationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}

type acceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

// AcceptInvitation joins the authenticated caller to the inviting provider.
// It is provider-unscoped; the token decides the target.
func AcceptInvitation(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitations service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body acceptInvitationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Accept(r.Context(), userID, body.Token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
