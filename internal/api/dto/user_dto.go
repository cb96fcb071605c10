package dto

import (
	"time"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Password   string          `json:"password"`
	Department string          `json:"department"`
	Role       domain.UserRole `json:"role,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest payload for the refresh flow.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserUpdateRequest payload for profile/user updates. Nil fields are left
// untouched.
type UserUpdateRequest struct {
	FirstName  *string          `json:"first_name"`
	LastName   *string          `json:"last_name"`
	Department *string          `json:"department"`
	Role       *domain.UserRole `json:"role"`
	Active     *bool            `json:"active"`
}

// UserResponse is the public view of a user; the password hash never leaves
// the service.
type UserResponse struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Role       domain.UserRole `json:"role"`
	Department string          `json:"department"`
	Active     bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Department: user.Department,
		Active:     user.Active,
		CreatedAt:  user.CreatedAt,
	}
}
