package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is the closed set of user roles stored in 'users.role'.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleSeller
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleCustomer: "customer",
	RoleSeller:   "seller",
	RoleAdmin:    "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole maps a stored or submitted role name onto the enum.
func ParseRole(s string) (Role, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == needle {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Capability is something a principal may be allowed to do.
type Capability int

const (
	CapabilityManageCart Capability = iota + 1
	CapabilityViewOrders
)

var grants = map[Role][]Capability{
	RoleCustomer: {CapabilityManageCart, CapabilityViewOrders},
	RoleSeller:   {},
	RoleAdmin:    {},
}

// Can is the single authorization check used by the services.
func (r Role) Can(c Capability) bool {
	for _, granted := range grants[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) Can(c Capability) bool {
	return p.Role.Can(c)
}
