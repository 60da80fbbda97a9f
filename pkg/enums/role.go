package enums

import (
	"fmt"
	"strings"
)

// Role is the account role carried in access tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
	// RoleNone marks an unauthenticated visitor. It is never persisted.
	RoleNone Role = "none"
)

var validRoles = []Role{
	RoleAdmin,
	RoleStaff,
	RoleCustomer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known persisted Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanEditContent reports whether the role may enter edit mode and write content.
func (r Role) CanEditContent() bool {
	return r == RoleAdmin || r == RoleStaff
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
