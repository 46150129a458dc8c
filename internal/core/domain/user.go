package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of marketplace actors.
type Role string

const (
	RoleEntrepreneur Role = "entrepreneur"
	RoleInvestor     Role = "investor"
	RoleAdmin        Role = "admin"
)

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEntrepreneur:
		return RoleEntrepreneur, nil
	case RoleInvestor:
		return RoleInvestor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// SwitchRole dispatches on role. It is the only place role branching happens;
// a new role means a new parameter here and a compile error at every caller.
func SwitchRole[T any](
	r Role,
	entrepreneur func() (T, error),
	investor func() (T, error),
	admin func() (T, error),
) (T, error) {
	switch r {
	case RoleEntrepreneur:
		return entrepreneur()
	case RoleInvestor:
		return investor()
	case RoleAdmin:
		return admin()
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
}

// User is a marketplace profile row.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Verified  bool      `json:"verified"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// FirstName returns the first word of the full name.
func (u User) FirstName() string {
	fields := strings.Fields(u.FullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Initial returns the upper-cased first rune of name, or "?" when empty.
func Initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// UserRef is the subset of a user row embedded in joined reads.
type UserRef struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}
