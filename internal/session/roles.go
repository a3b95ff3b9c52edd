package session

import "strings"

// Role is the closed set of backend roles. Every view gates on the
// predicates here instead of comparing raw role strings.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleKetua   Role = "ketua"
	RolePembina Role = "pembina"
	RoleMember  Role = "member"
)

// ParseRole maps a backend role string onto the closed set. Unknown
// values degrade to the least-privileged role.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleKetua:
		return RoleKetua
	case RolePembina:
		return RolePembina
	default:
		return RoleMember
	}
}

// IsAdmin reports whether the role is admin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsCore reports whether the role is a core role (admin, ketua, pembina).
// These flags gate UI only; the backend stays the authorization authority.
func (r Role) IsCore() bool {
	switch r {
	case RoleAdmin, RoleKetua, RolePembina:
		return true
	default:
		return false
	}
}

// Roles lists the assignable roles for role-change forms.
func Roles() []Role {
	return []Role{RoleAdmin, RoleKetua, RolePembina, RoleMember}
}
