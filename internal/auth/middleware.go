package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

const identityKey = "auth_identity"

// Identity is the authenticated caller as proven by the token signature. It
// is published into the request scope by the middleware; handlers read it
// through IdentityFromContext instead of untyped lookups.
type Identity struct {
	UserID string
	Email  string
	Role   domain.UserRole
}

// Middleware validates bearer access tokens and publishes the caller identity.
//
// It never consults the credential store: the signature is authoritative
// proof of identity and role as of issuance time, so role changes and
// deactivation take effect only once the current access token expires.
type Middleware struct {
	tokens   *TokenManager
	denylist *Denylist
}

// NewMiddleware constructs the authenticator. denylist may be nil when
// revocation is disabled.
func NewMiddleware(tokens *TokenManager, denylist *Denylist) *Middleware {
	return &Middleware{tokens: tokens, denylist: denylist}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("authorization header required")
	}

	// Exact shape "Bearer <token>": single space, case-sensitive scheme.
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Validate(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	// Refresh tokens are single-purpose and never authenticate an API call.
	if claims.IsRefresh {
		return apperrors.NewUnauthorized("access token required")
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.NewUnauthorized("invalid or expired token")
		}
	}

	c.Locals(identityKey, &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	})
	return c.Next()
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
