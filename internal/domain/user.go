package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleCitizen Role = "citoyen"
	RoleAdmin   Role = "admin"
)

// User is the domain model for citizen and admin accounts.
// Accounts are never hard-deleted; deactivation clears Active.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Points       int
	Active       bool
	RegisteredAt time.Time
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
