// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package sec

// # Account Roles

// AccountRole represents the authorization level granted to an account.
//
// Roles govern operator access only. Data visibility is always scoped by the
// owning account id, never by role.
type AccountRole string

const (
	// Unrestricted system access (operations, support tooling)
	RoleAdmin AccountRole = "admin"

	// Default role for standard registered accounts
	RoleMember AccountRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r AccountRole) AtLeast(target AccountRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r AccountRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleMember:
		return 10
	default:
		return 0
	}
}
