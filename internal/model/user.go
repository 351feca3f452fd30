package model

import (
	"context"
	"strings"
	"time"
)

// Role names known to the system.
const (
	RoleUser    = "USER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	SetFirebaseUID(ctx context.Context, id int64, uid string) error
}

// User is the authoritative relational identity record.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirebaseUID  *string
	Roles        []string
	CreatedAt    time.Time
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeIdentity is the single canonical form of an email/username used
// as key of every lockout and attempt record.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Credentials is a login request.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration is a sign-up request.
type Registration struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,max=100"`
	Password string `validate:"required,min=6"`
}

// UserUpdate carries optional profile changes; empty fields are left as is.
type UserUpdate struct {
	Username string `validate:"omitempty,max=100"`
	Email    string `validate:"omitempty,email"`
	Password string `validate:"omitempty,min=6"`
}

// Session is the result of a successful authentication or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	UserID    int64
	Email     string
	Username  string
	Roles     []string
	Mode      AuthMode
}

// AuthMode tells which path served an authentication.
type AuthMode string

const (
	AuthModeRemote AuthMode = "remote"
	AuthModeLocal  AuthMode = "local"
)
