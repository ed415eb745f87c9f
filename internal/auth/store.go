// Package auth checks login credentials against a user store and tracks the
// sessions issued for successful logins.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates no user is registered under the email.
	ErrNotFound = errors.New("auth: user not found")
	// ErrUserExists indicates a user with the same email is already stored.
	ErrUserExists = errors.New("auth: user already exists")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// User is a stored account.
type User struct {
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store defines persistence operations for users.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Lookup(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) error
	List(ctx context.Context) ([]User, error)
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
