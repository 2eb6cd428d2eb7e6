package models

import "time"

// Admin roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Admin is a backoffice account. Admins are created by the seed binary
// only, never through the public API.
type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}
