package domain

import (
	"slices"
	"time"
)

// Role names seeded by the schema migration.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
	RoleAPIUser    = "apiuser"
)

// User models an account managed from the admin dashboard.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	PasswordHash string    `json:"-"`
	APIToken     string    `json:"api_token"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// HasAnyRole reports whether the user holds at least one of names.
func (u *User) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if u.HasRole(n) {
			return true
		}
	}
	return false
}

// NormalizeRoles returns names de-duplicated and sorted, dropping empty entries.
// Role assignment has set semantics, so order in the input never matters.
func NormalizeRoles(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
