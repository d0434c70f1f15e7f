package auth

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrInvalidRole is returned by ParseRole for values outside {user, admin}.
var ErrInvalidRole = errors.New("role must be 'admin' or 'user'")

// ParseRole accepts exactly the two known roles.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// NormalizeRole maps stored values to a Role, defaulting to RoleUser.
func NormalizeRole(role string) Role {
	parsed, err := ParseRole(role)
	if err != nil {
		return RoleUser
	}
	return parsed
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}
