package users

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles a user may hold.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

var roles = []string{RoleAdmin, RoleManager, RoleUser}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is a portal account. The password hash never leaves the repository.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCommand contains the fields for creating a user.
// An empty Role defaults to user.
type CreateCommand struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateCommand contains the mutable fields of a user.
type UpdateCommand struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// Validate normalizes cmd and checks required fields, email format, and role.
func (cmd *CreateCommand) Validate() error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))

	if cmd.Name == "" || cmd.Email == "" || cmd.Password == "" {
		return ErrMissingFields
	}
	if !emailPattern.MatchString(cmd.Email) {
		return ErrInvalidEmail
	}
	if cmd.Role == "" {
		cmd.Role = RoleUser
	}
	if !ValidRole(cmd.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Validate normalizes cmd and checks the name and role.
func (cmd *UpdateCommand) Validate() error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Name == "" {
		return ErrMissingFields
	}
	if !ValidRole(cmd.Role) {
		return ErrInvalidRole
	}
	return nil
}

// ValidRole reports whether role is one of admin, manager, or user.
func ValidRole(role string) bool {
	return slices.Contains(roles, role)
}
