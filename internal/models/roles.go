// internal/models/roles.go

package models

import "strings"

// UserRole is bound to an account at registration and never changes.
type UserRole string

const (
	RoleDonor    UserRole = "donor"
	RoleReceiver UserRole = "receiver"
	RoleAdmin    UserRole = "admin"
)

// IsValid reports whether r is one of the recognised roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleDonor, RoleReceiver, RoleAdmin:
		return true
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// AllRoles returns every recognised role.
func AllRoles() []UserRole {
	return []UserRole{RoleDonor, RoleReceiver, RoleAdmin}
}

// NormalizeRole maps a client supplied role label onto a UserRole.
// The client calls admins "volunteer".
func NormalizeRole(role string) (UserRole, bool) {
	value := strings.ToLower(strings.TrimSpace(role))
	if value == "volunteer" {
		return RoleAdmin, true
	}
	r := UserRole(value)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
