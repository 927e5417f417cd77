// Package auth holds the caller identity model shared by every service:
// the closed set of roles, the capability checks built on them and the JWTs
// that carry them between services.
package auth

import "errors"

type Role string

const (
	RoleCustomer    Role = "customer"
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleDeliveryMan Role = "delivery_man"
)

var ErrUnknownRole = errors.New("unknown role")

func Roles() []Role {
	return []Role{RoleCustomer, RoleAdmin, RoleManager, RoleDeliveryMan}
}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleManager, RoleDeliveryMan:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Actor is the verified caller of a request.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
