package domain

import "time"

// UserRole enumerates authorization roles. The role label is the sole
// authorization input for route guards.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleAgent   UserRole = "AGENT"
	RoleEndUser UserRole = "END_USER"
)

// Valid reports whether the role is one of the known labels.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleEndUser:
		return true
	}
	return false
}

// User is the identity record owned by the credential store.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         UserRole
	Department   string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
