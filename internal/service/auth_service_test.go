package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/PacifistaPx0/helpdesk/internal/config"
	"github.com/PacifistaPx0/helpdesk/internal/domain"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "helpdesk-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
}

func seedUser(t *testing.T, svc *AuthService, email, password string, role domain.UserRole) *domain.User {
	t.Helper()
	user, _, err := svc.Register(context.Background(), RegisterInput{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Password:  password,
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDefaultsToEndUser(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)

	user, pair, err := svc.Register(context.Background(), RegisterInput{
		Email:     "new@helpdesk.local",
		FirstName: "New",
		LastName:  "User",
		Password:  "s3cret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEndUser, user.Role)
	assert.True(t, user.Active)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)
	seedUser(t, svc, "dup@helpdesk.local", "s3cret123", domain.RoleEndUser)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:     "dup@helpdesk.local",
		FirstName: "Other",
		LastName:  "User",
		Password:  "s3cret123",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginRoundTrip(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)
	seeded := seedUser(t, svc, "agent@helpdesk.local", "s3cret123", domain.RoleAgent)

	user, pair, err := svc.Login(context.Background(), "agent@helpdesk.local", "s3cret123")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)

	claims, err := svc.TokenManager().Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, claims.UserID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewAuthService(testAuthConfig(), repo, nil)
	user := seedUser(t, svc, "user@helpdesk.local", "s3cret123", domain.RoleEndUser)

	_, _, wrongPassword := svc.Login(context.Background(), "user@helpdesk.local", "wrong")
	_, _, unknownEmail := svc.Login(context.Background(), "ghost@helpdesk.local", "s3cret123")

	user.Active = false
	require.NoError(t, repo.Update(context.Background(), user))
	_, _, inactive := svc.Login(context.Background(), "user@helpdesk.local", "s3cret123")

	for name, err := range map[string]error{
		"wrong password": wrongPassword,
		"unknown email":  unknownEmail,
		"inactive":       inactive,
	} {
		require.Error(t, err, name)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code, name)
		assert.Equal(t, "invalid email or password", domainErr.Message, name)
	}
}

func TestRefreshFlow(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)
	seeded := seedUser(t, svc, "agent@helpdesk.local", "s3cret123", domain.RoleAgent)

	_, pair, err := svc.Login(context.Background(), "agent@helpdesk.local", "s3cret123")
	require.NoError(t, err)

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, newPair.RefreshToken)

	claims, err := svc.TokenManager().Validate(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, claims.UserID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)
	seedUser(t, svc, "agent@helpdesk.local", "s3cret123", domain.RoleAgent)

	_, pair, err := svc.Login(context.Background(), "agent@helpdesk.local", "s3cret123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestLogoutIsStatelessWithoutRevocation(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)
	seedUser(t, svc, "agent@helpdesk.local", "s3cret123", domain.RoleAgent)

	_, pair, err := svc.Login(context.Background(), "agent@helpdesk.local", "s3cret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.AccessToken))

	// Without revocation the token stays valid until natural expiry.
	_, err = svc.TokenManager().Validate(pair.AccessToken)
	assert.NoError(t, err)
}

func TestProfile(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newMemUserRepo(), nil)
	seeded := seedUser(t, svc, "user@helpdesk.local", "s3cret123", domain.RoleEndUser)

	user, err := svc.Profile(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, user.Email)

	_, err = svc.Profile(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
