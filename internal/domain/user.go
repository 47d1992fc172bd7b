// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned by repositories when a write would violate
// the unique-email constraint. The store's uniqueness constraint is the
// single source of truth for this condition; callers must not pre-check.
var ErrDuplicateEmail = errors.New("email already exists")

// User represents a registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
}

// ProfileUpdate carries the mutable profile fields. Empty fields are left
// unchanged.
type ProfileUpdate struct {
	Email        string
	PasswordHash string
}

// IsZero reports whether the update changes nothing.
func (p ProfileUpdate) IsZero() bool {
	return p.Email == "" && p.PasswordHash == ""
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	// Create stores a new user and returns it with the store-generated ID.
	// Returns ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, username, email, passwordHash, phone string) (*User, error)
	// GetByEmail returns the user with the given email, or (nil, nil) if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns the user with the given id, or (nil, nil) if absent.
	GetByID(ctx context.Context, id string) (*User, error)
	// Update applies the non-empty fields of upd to the user with the given
	// id. Reports whether a user was found. Returns ErrDuplicateEmail if the
	// new email is already taken.
	Update(ctx context.Context, id string, upd ProfileUpdate) (bool, error)
}
