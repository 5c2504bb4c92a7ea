package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on users
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a user in the system (customer or administrator)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"size:70;not null" json:"-"` // bcrypt hash
	FirstName string         `gorm:"size:50;not null" json:"first_name"`
	LastName  string         `gorm:"size:50;not null" json:"last_name"`
	Role      string         `gorm:"size:20;not null;default:'USER'" json:"role"` // "USER" or "ADMIN"
	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// Authority returns the granted authority carried in tokens for this user's role
func (u User) Authority() string {
	return AuthorityFor(u.Role)
}

// AuthorityFor maps a role to its token authority, e.g. "ADMIN" -> "ROLE_ADMIN"
func AuthorityFor(role string) string {
	return "ROLE_" + role
}

// IsValidRole reports whether role is one of the known roles
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
