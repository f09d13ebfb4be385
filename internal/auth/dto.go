package auth

import (
	"github.com/google/uuid"

	"github.com/caterkita/caterkita-backend/internal/users"
	"github.com/caterkita/caterkita-backend/pkg/enums"
)

// RegisterInput captures a provider onboarding request. The registering user
// becomes the provider's owner.
type RegisterInput struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8"`
	FirstName    string  `json:"first_name" validate:"required"`
	LastName     string  `json:"last_name" validate:"required"`
	Phone        *string `json:"phone,omitempty"`
	ProviderName string  `json:"provider_name" validate:"required"`
}

// LoginInput carries the credentials for a password login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the response shape shared by register, login, refresh and
// switch-provider. The refresh token is only ever surfaced here.
type Session struct {
	AccessToken      string           `json:"access_token"`
	RefreshToken     string           `json:"refresh_token"`
	User             *users.UserDTO   `json:"user"`
	ActiveProviderID *uuid.UUID       `json:"active_provider_id,omitempty"`
	Role             enums.MemberRole `json:"role"`
}
