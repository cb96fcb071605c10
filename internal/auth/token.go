package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/PacifistaPx0/helpdesk/internal/config"
	"github.com/PacifistaPx0/helpdesk/internal/domain"
)

// ErrInvalidToken is returned for any token that fails signature, structure
// or expiry checks. Callers surface it uniformly; the reason is not exposed.
var ErrInvalidToken = errors.New("invalid token")

// ErrNotRefreshToken is returned when the refresh flow is handed an access token.
var ErrNotRefreshToken = errors.New("not a refresh token")

// Claims describes the JWT payload carried by both token kinds.
type Claims struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	IsRefresh bool            `json:"is_refresh,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates signed access/refresh token pairs. It is
// a pure function of (secret, claims, clock): it holds no mutable state and
// never touches the credential store.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager builds a manager from injected configuration.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// AccessTTL exposes the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration {
	return tm.accessTTL
}

// IssuePair creates independently signed access and refresh tokens for the
// user. Both carry identity and role; they differ in kind and expiry horizon.
func (tm *TokenManager) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	now := tm.now()

	access, err := tm.sign(user, false, now, now.Add(tm.accessTTL))
	if err != nil {
		return nil, err
	}
	refresh, err := tm.sign(user, true, now, now.Add(tm.refreshTTL))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(tm.accessTTL.Seconds()),
	}, nil
}

func (tm *TokenManager) sign(user *domain.User, isRefresh bool, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IsRefresh: isRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tm.issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Validate parses the token and verifies signature and expiry. Both checks
// are mandatory; any failure maps to ErrInvalidToken.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh validates a refresh token and mints a new access token carrying the
// same identity claims with a fresh expiry. Unless rotation is requested the
// presented refresh token is returned unchanged and stays valid until its own
// expiry.
func (tm *TokenManager) Refresh(refreshTokenStr string, rotate bool) (*domain.TokenPair, *Claims, error) {
	claims, err := tm.Validate(refreshTokenStr)
	if err != nil {
		return nil, nil, err
	}
	if !claims.IsRefresh {
		return nil, nil, ErrNotRefreshToken
	}

	user := &domain.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}

	now := tm.now()
	access, err := tm.sign(user, false, now, now.Add(tm.accessTTL))
	if err != nil {
		return nil, nil, err
	}

	refresh := refreshTokenStr
	if rotate {
		refresh, err = tm.sign(user, true, now, now.Add(tm.refreshTTL))
		if err != nil {
			return nil, nil, err
		}
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(tm.accessTTL.Seconds()),
	}, claims, nil
}
