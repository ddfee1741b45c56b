package models

import "time"

// Account roles. Writers may mutate content, any other role is read-only.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

type User struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Identity
	LoginID string `gorm:"column:login_id;uniqueIndex"` // login handle, globally unique
	Name    string `gorm:"column:name"`                 // display name
	Email   string `gorm:"column:email"`
	Role    string `gorm:"column:role"` // admin / editor / viewer

	// Credentials
	Password string `gorm:"column:password"` // argon2id hash

	LastLoginAt *time.Time `gorm:"column:last_login_at"` // updated on successful login
}
