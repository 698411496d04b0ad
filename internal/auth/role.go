package auth

import "strings"

// Role represents a user role.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleViewer, RoleAdmin, RoleSuperAdmin:
		return role, true
	default:
		return "", false
	}
}

// RoleFromPermission maps the registry's numeric permission ids (1 viewer, 2 admin, 3 superadmin).
func RoleFromPermission(id int) (Role, bool) {
	switch id {
	case 1:
		return RoleViewer, true
	case 2:
		return RoleAdmin, true
	case 3:
		return RoleSuperAdmin, true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	rank := roleRank(role)
	return rank > 0 && rank >= roleRank(required)
}

// SeesAllDivisions reports whether the role may read every division's periods.
func (r Role) SeesAllDivisions() bool {
	return RoleAtLeast(r, RoleAdmin)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}
