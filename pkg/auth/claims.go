package auth

import (
	"github.com/caterkita/caterkita-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID           uuid.UUID
	ActiveProviderID *uuid.UUID
	Role             enums.MemberRole
	JTI              string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID           uuid.UUID        `json:"user_id"`
	ActiveProviderID *uuid.UUID       `json:"active_provider_id,omitempty"`
	Role             enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
