package shared

import "github.com/google/uuid"

// Role identifies which kind of actor is requesting a transition
type Role string

const (
	RoleBuyer   Role = "BUYER"
	RoleSeller  Role = "SELLER"
	RoleShipper Role = "SHIPPER"
	RoleAdmin   Role = "ADMIN"
	// RoleSystem marks transitions driven by the platform itself
	// (payment confirmation, sweeper, release scheduler).
	RoleSystem Role = "SYSTEM"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleShipper, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Actor is the identity on whose behalf a transition is evaluated
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// SystemActor returns the platform-internal actor used by schedulers and
// gateway-driven transitions.
func SystemActor() Actor {
	return Actor{ID: uuid.Nil, Role: RoleSystem}
}

// IsAdmin returns true for platform operators
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsSystem returns true for platform-internal actors
func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}
