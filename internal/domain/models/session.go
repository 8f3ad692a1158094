package models

import "strings"

// Role enumerates operator roles supplied by the authentication provider.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// ParseRole normalizes a role name. Unknown roles degrade to viewer.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleTechnician:
		return RoleTechnician
	default:
		return RoleViewer
	}
}

// CanControl reports whether the role may change room or catalog state.
func (r Role) CanControl() bool {
	return r == RoleAdmin || r == RoleTechnician
}

// CanAdminister reports whether the role may read the audit log and prune history.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// Session is the per-operator state passed explicitly into every operation.
type Session struct {
	User           string `json:"user"`
	Role           Role   `json:"role"`
	CurrentRoomID  string `json:"current_room_id"`
	ManualOverride bool   `json:"manual_override"`
	EnergySaving   bool   `json:"energy_saving"`
}
