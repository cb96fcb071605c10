package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PacifistaPx0/helpdesk/internal/api/dto"
	"github.com/PacifistaPx0/helpdesk/internal/auth"
	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/service"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// AuthHandler exposes login, registration and token lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("email, password, first_name and last_name required", nil)
	}

	// Only an authenticated admin may create admin accounts.
	if req.Role == domain.RoleAdmin {
		identity, ok := auth.IdentityFromContext(c)
		if !ok || identity.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("insufficient permissions", map[string]any{
				"required_roles": []domain.UserRole{domain.RoleAdmin},
			})
		}
	}

	user, pair, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
		Department: req.Department,
		Role:       req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user":   dto.NewUserResponse(user),
		"tokens": pair,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":   dto.NewUserResponse(user),
		"tokens": pair,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refresh_token required", nil)
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"tokens": pair})
}

// Logout handles POST /auth/logout. Stateless acknowledgment: the client
// discards its tokens. With revocation enabled the presented access token is
// denylisted until expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := ""
	header := c.Get("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		token = parts[1]
	}

	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "logged out"})
}

// Profile handles GET /profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.Profile(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}
