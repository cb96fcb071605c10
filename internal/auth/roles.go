package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// RequireRole allows continuation iff the published role is a member of the
// allowed set. The message is a fixed "insufficient permissions"; the details
// carry the caller's role and the route's allowed roles.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewForbidden("insufficient permissions", map[string]any{
				"user_role":      identity.Role,
				"required_roles": allowed,
			})
		}
		return c.Next()
	}
}

// RequireAdmin gates routes to administrators.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

// RequireStaff gates routes to agents and administrators.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleAgent)
}
