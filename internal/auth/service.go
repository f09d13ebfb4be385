package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/providers"
	"github.com/caterkita/caterkita-backend/internal/users"
	pkgauth "github.com/caterkita/caterkita-backend/pkg/auth"
	"github.com/caterkita/caterkita-backend/pkg/auth/session"
	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/db"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/logger"
	"github.com/caterkita/caterkita-backend/pkg/security"
)

const minPasswordLength = 8

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateTx(tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
	UpdateProviderIDsTx(tx *gorm.DB, id uuid.UUID, providerIDs []uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type providersRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Provider, error)
	CreateTx(tx *gorm.DB, dto providers.CreateProviderDTO) (*models.Provider, error)
}

type membershipsRepository interface {
	CreateMembershipTx(tx *gorm.DB, providerID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.ProviderMembership, error)
	GetActiveMembership(ctx context.Context, userID, providerID uuid.UUID) (*models.ProviderMembership, error)
	FirstActiveMembership(ctx context.Context, userID uuid.UUID) (*models.ProviderMembership, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers the authentication lifecycle: onboarding, password login,
// refresh rotation, logout and active-provider switching.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	Logout(ctx context.Context, accessID string) error
	SwitchProvider(ctx context.Context, userID uuid.UUID, currentAccessID string, providerID uuid.UUID) (*Session, error)
}

type service struct {
	users       usersRepository
	providers   providersRepository
	memberships membershipsRepository
	sessions    sessionManager
	tx          txRunner
	jwt         config.JWTConfig
	password    config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the auth service.
func NewService(
	usersRepo usersRepository,
	providersRepo providersRepository,
	membershipsRepo membershipsRepository,
	sessions sessionManager,
	tx txRunner,
	jwtCfg config.JWTConfig,
	passwordCfg config.PasswordConfig,
	logg *logger.Logger,
) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if providersRepo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		users:       usersRepo,
		providers:   providersRepo,
		memberships: membershipsRepo,
		sessions:    sessions,
		tx:          tx,
		jwt:         jwtCfg,
		password:    passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Register creates the user, their provider and the owner membership in one
// transaction, then opens a session scoped to the new provider.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	providerName := strings.TrimSpace(input.ProviderName)
	if providerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider name is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	slug, err := s.resolveSlug(ctx, providerName)
	if err != nil {
		return nil, err
	}

	var (
		user     *models.User
		provider *models.Provider
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err = s.users.CreateTx(tx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			FirstName:    firstName,
			LastName:     lastName,
			Phone:        input.Phone,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
			}
			return err
		}

		provider, err = s.providers.CreateTx(tx, providers.CreateProviderDTO{
			Name:    providerName,
			Slug:    slug,
			OwnerID: user.ID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_providers_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "provider name is already taken")
			}
			return err
		}

		if _, err := s.memberships.CreateMembershipTx(
			tx, provider.ID, user.ID, enums.MemberRoleOwner, nil, enums.MembershipStatusActive,
		); err != nil {
			return err
		}

		return s.users.UpdateProviderIDsTx(tx, user.ID, []uuid.UUID{provider.ID})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register")
	}

	user.ProviderIDs = append(user.ProviderIDs, provider.ID)
	return s.issueSession(ctx, user, &provider.ID, enums.MemberRoleOwner)
}

// Login verifies the password and opens a session scoped to the user's oldest
// active membership. Unknown emails and bad passwords share one message.
func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is disabled")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	providerID, role, err := s.resolveScope(ctx, user.ID, nil)
	if err != nil {
		return nil, err
	}

	// Last login is advisory; a failed stamp never blocks the login.
	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"user_id": user.ID.String(),
			"error":   err.Error(),
		}), "last login stamp failed")
	}

	return s.issueSession(ctx, user, providerID, role)
}

// Refresh rotates the refresh token and re-mints the access token, picking up
// role or membership changes made since the last mint.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if strings.TrimSpace(accessToken) == "" || strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	// Expired access tokens are fine here; only the jti matters.
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is disabled")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	providerID, role, err := s.resolveScope(ctx, user.ID, claims.ActiveProviderID)
	if err != nil {
		return nil, err
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:           user.ID,
		ActiveProviderID: providerID,
		Role:             role,
		JTI:              newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &Session{
		AccessToken:      token,
		RefreshToken:     newRefresh,
		User:             users.FromModel(user),
		ActiveProviderID: providerID,
		Role:             role,
	}, nil
}

// Logout revokes the refresh session tied to the access identifier.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// SwitchProvider re-mints the token against another of the user's providers.
// The old session is revoked so a single refresh chain stays live.
func (s *service) SwitchProvider(ctx context.Context, userID uuid.UUID, currentAccessID string, providerID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil || strings.TrimSpace(currentAccessID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	// Providers the user does not belong to read as not found.
	membership, err := s.memberships.GetActiveMembership(ctx, userID, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	if err := s.sessions.Revoke(ctx, currentAccessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}

	return s.issueSession(ctx, user, &membership.ProviderID, membership.Role)
}

// resolveScope picks the provider scope for a fresh token. A preferred
// provider wins when the membership is still active; otherwise the oldest
// active membership; a user with none gets an unscoped viewer token.
func (s *service) resolveScope(ctx context.Context, userID uuid.UUID, preferred *uuid.UUID) (*uuid.UUID, enums.MemberRole, error) {
	if preferred != nil {
		membership, err := s.memberships.GetActiveMembership(ctx, userID, *preferred)
		if err == nil {
			return &membership.ProviderID, membership.Role, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
		}
	}

	membership, err := s.memberships.FirstActiveMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, enums.MemberRoleViewer, nil
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}
	return &membership.ProviderID, membership.Role, nil
}

func (s *service) issueSession(ctx context.Context, user *models.User, providerID *uuid.UUID, role enums.MemberRole) (*Session, error) {
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:           user.ID,
		ActiveProviderID: providerID,
		Role:             role,
		JTI:              accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &Session{
		AccessToken:      token,
		RefreshToken:     refresh,
		User:             users.FromModel(user),
		ActiveProviderID: providerID,
		Role:             role,
	}, nil
}

// resolveSlug derives the provider slug from the name, appending a short
// random suffix when the base slug is taken.
func (s *service) resolveSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "provider name must contain letters or digits")
	}

	if _, err := s.providers.FindBySlug(ctx, base); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return base, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate slug suffix")
	}
	return base + "-" + hex.EncodeToString(suffix), nil
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
