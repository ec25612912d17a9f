package models

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the campus role attached to a session.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RolePresident Role = "president"
)

// ParseRole converts raw input into a known Role.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleStudent, RoleTeacher, RolePresident:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Privileged reports whether the role may moderate the board.
func (r Role) Privileged() bool {
	switch r {
	case RoleTeacher, RolePresident:
		return true
	case RoleStudent:
		return false
	default:
		return false
	}
}

// Session identifies the acting user. It is supplied externally and never issued here.
type Session struct {
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=student teacher president"`
}

// Privileged is shorthand for s.Role.Privileged().
func (s Session) Privileged() bool {
	return s.Role.Privileged()
}

// SessionClaims is the JWT payload carrying a session.
type SessionClaims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Session converts the claims into a Session.
func (c *SessionClaims) Session() Session {
	return Session{Email: c.Email, Role: c.Role}
}
