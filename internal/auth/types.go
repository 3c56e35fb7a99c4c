package auth

import (
	"errors"
	"fmt"
)

// Role is the authorisation tier recorded in a session.
type Role string

const (
	// RoleAdmin may add, remove and retune thermostats.
	RoleAdmin Role = "admin"

	// RoleUnauthorized can log in but every registry mutation is rejected.
	RoleUnauthorized Role = "unauthorized"
)

// ParseRole validates a role name from configuration.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUnauthorized:
		return r, nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
}

// Credential is one row of the static credential table.
type Credential struct {
	Username     string
	PasswordHash string // Argon2id PHC string
	Role         Role
}

// Session is the caller identity carried between requests.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether s grants admin rights. A nil session never does.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Sentinel errors.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUnauthorized       = errors.New("auth: admin role required")
	ErrTokenInvalid       = errors.New("auth: invalid session token")
	ErrTokenRevoked       = errors.New("auth: session has been logged out")
)
