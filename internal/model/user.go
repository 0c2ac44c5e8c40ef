package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "USER"  // Default role: can borrow and return books
	UserRoleAdmin UserRole = "ADMIN" // Full access: catalog management, user listing
)

// User represents a library member account
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"` // Stored lowercased; unique
	Hash      *string   `json:"-"`     // Never expose password hash
	Role      UserRole  `json:"role"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
