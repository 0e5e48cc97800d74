package models

import "time"

// UserRole is the closed role enum for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
	RoleParent  UserRole = "PARENT"

	// RoleUnknown is the sentinel for claims outside the enum or missing
	// sessions. It is never granted access to gated items.
	RoleUnknown UserRole = ""
)

// ParseRole converts the raw claim string supplied at the identity boundary
// into the closed enum. Anything unrecognised resolves to RoleUnknown.
func ParseRole(raw string) UserRole {
	switch UserRole(raw) {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return UserRole(raw)
	default:
		return RoleUnknown
	}
}

// Known reports whether the role belongs to the enum.
func (r UserRole) Known() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent || r == RoleParent
}

// User represents an application account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// RoleCount pairs a role with the number of accounts holding it.
type RoleCount struct {
	Role  UserRole `db:"role" json:"role"`
	Count int      `db:"count" json:"count"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
