package domain

import "fmt"

// Role is the access tag stored on every user. The set is closed: every switch
// over Role must handle RoleAdmin, RoleCustomer and RoleDelivery.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleDelivery Role = "delivery"
)

// DefaultRole is assigned to every self-registered account.
const DefaultRole = RoleCustomer

var validRoles = []Role{RoleAdmin, RoleCustomer, RoleDelivery}

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts a stored or configured value into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
}
