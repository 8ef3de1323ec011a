package domain

import (
	"context"
	"time"
)

// Role classifies a user's privileges
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Valid reports whether the role is one of the three known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// Actor is the authenticated identity performing an operation
type Actor struct {
	ID   string
	Role Role
}

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"` // Unique
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	ManagerID    string    `json:"managerId,omitempty"` // Only meaningful when Role == RoleUser
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserFilter narrows profile queries
type UserFilter struct {
	Roles      []Role
	HasManager *bool  // nil = don't care
	ManagerID  string // team scope: users whose ManagerID matches
	ID         string
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Find(ctx context.Context, filter UserFilter, sortAsc bool) ([]*User, error)
}
