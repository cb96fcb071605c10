package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/PacifistaPx0/helpdesk/internal/auth"
	"github.com/PacifistaPx0/helpdesk/internal/config"
	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/repository"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// AuthService coordinates registration, login and token lifecycle flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	denylist   *auth.Denylist
	bcryptCost int
	revocation bool
	rotation   bool
}

// NewAuthService builds the service. denylist may be nil when revocation and
// rotation are both disabled.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, denylist *auth.Denylist) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     auth.NewTokenManager(cfg),
		denylist:   denylist,
		bcryptCost: cfg.BcryptCost,
		revocation: cfg.RevocationEnabled,
		rotation:   cfg.RefreshRotation,
	}
}

// Register creates a new account. The default role is END_USER; handler-level
// checks decide who may create elevated roles.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEndUser
	}
	if !role.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		Role:         role,
		Department:   input.Department,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RegisterInput describes the registration payload.
type RegisterInput struct {
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Department string
	Role       domain.UserRole
}

// Login authenticates a user by email and password. Wrong password and
// inactive account both surface the same generic failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}
	if !user.Active {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token. With
// rotation enabled the refresh token is replaced and the old one revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	rotate := s.rotation && s.denylist != nil

	if s.denylist != nil {
		claims, err := s.tokens.Validate(refreshToken)
		if err != nil {
			return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
		}
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
		}
	}

	pair, oldClaims, err := s.tokens.Refresh(refreshToken, rotate)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	if rotate && oldClaims.ExpiresAt != nil {
		if err := s.denylist.Revoke(ctx, oldClaims.ID, oldClaims.ExpiresAt.Time); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

// Logout acknowledges the client discarding its tokens. With revocation
// enabled the presented access token is denylisted until its natural expiry;
// otherwise this is a stateless no-op.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if !s.revocation || s.denylist == nil || accessToken == "" {
		return nil
	}
	claims, err := s.tokens.Validate(accessToken)
	if err != nil {
		// Already invalid; nothing to revoke.
		return nil
	}
	expiresAt := time.Time{}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, claims.ID, expiresAt)
}

// Profile loads the caller's user record.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
