package domain

import (
	"strings"
	"time"
)

// Role is one member of the closed role set.
type Role struct {
	ID   int
	Name string
}

var (
	RoleAdmin = Role{ID: 1, Name: "Admin"}
	RoleUser  = Role{ID: 2, Name: "User"}
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleUser}
}

// RoleByID resolves a role id.
func RoleByID(id int) (Role, bool) {
	for _, r := range Roles() {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// User is a principal that can authenticate against the catalog.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole compares role names case-insensitively.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	return strings.EqualFold(u.Role.Name, strings.TrimSpace(name))
}

// HasAnyRole reports whether the user holds at least one of the names.
func (u *User) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if u.HasRole(name) {
			return true
		}
	}
	return false
}
