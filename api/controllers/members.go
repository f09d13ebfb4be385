package controllers

import (
	"net/http"

	"github.com/caterkita/caterkita-backend/api/responses"
	"github.com/caterkita/caterkita-backend/api/validators"
	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// ListMembers returns the provider roster with user metadata.
func ListMembers(svc memberships.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		members, err := svc.ListMembers(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

type createMemberRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role" validate:"required"`
}

// CreateMember adds a member directly, minting a temp password for new
// accounts. The temp password appears in this response only.
func CreateMember(svc memberships.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}

		var body createMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateMember(r.Context(), actor, memberships.CreateMemberInput{
			Email:     body.Email,
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Phone:     body.Phone,
			Role:      enums.MemberRole(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ChangeMemberRole rewrites a member's role.
func ChangeMemberRole(svc memberships.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		membershipID, ok := pathUUID(w, r, logg, "membershipId")
		if !ok {
			return
		}

		var body changeRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ChangeRole(r.Context(), actor, membershipID, enums.MemberRole(body.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// SuspendMember moves an active membership to suspended.
func SuspendMember(svc memberships.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		membershipID, ok := pathUUID(w, r, logg, "membershipId")
		if !ok {
			return
		}

		updated, err := svc.Suspend(r.Context(), actor, membershipID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ReactivateMember restores a suspended membership.
func ReactivateMember(svc memberships.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		membershipID, ok := pathUUID(w, r, logg, "membershipId")
		if !ok {
			return
		}

		updated, err := svc.Reactivate(r.Context(), actor, membershipID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// RemoveMember hard-deletes a membership row.
func RemoveMember(svc memberships.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}
		actor, ok := actorFromContext(w, r, logg)
		if !ok {
			return
		}
		membershipID, ok := pathUUID(w, r, logg, "membershipId")
		if !ok {
			return
		}

		if err := svc.Remove(r.Context(), actor, membershipID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
