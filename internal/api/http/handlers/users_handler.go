package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PacifistaPx0/helpdesk/internal/api/dto"
	"github.com/PacifistaPx0/helpdesk/internal/auth"
	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/repository"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	users repository.UserRepository
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users repository.UserRepository) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /users. Staff only (guarded at the route).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

// Get handles GET /users/:id. Users may see their own record; staff may see
// anyone.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	id := c.Params("id")
	if identity.Role == domain.RoleEndUser && identity.UserID != id {
		return apperrors.NewForbidden("insufficient permissions", nil)
	}

	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// Update handles PUT /users/:id. Users may update their own names and
// department; role and active changes require an admin.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	id := c.Params("id")
	if identity.Role == domain.RoleEndUser && identity.UserID != id {
		return apperrors.NewForbidden("insufficient permissions", nil)
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if (req.Role != nil || req.Active != nil) && identity.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("insufficient permissions", map[string]any{
			"user_role":      identity.Role,
			"required_roles": []domain.UserRole{domain.RoleAdmin},
		})
	}

	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": *req.Role})
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.users.Update(c.UserContext(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:id. Admin only (guarded at the route).
// Deleting a user who still owns or is assigned tickets fails with a
// conflict; tickets must be reassigned first.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	err := h.users.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.NewConflict("user still referenced by tickets; reassign them first", nil)
		}
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
