// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"propal/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory user store. Email uniqueness is enforced under
// the same lock as the insert, mirroring the database's unique index.
type DB struct {
	mu    sync.Mutex
	users []*domain.User
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

var _ domain.UserRepository = (*DB)(nil)

// Create stores a new user with a generated id.
func (db *DB) Create(ctx context.Context, username, email, passwordHash, phone string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)

	cp := *u
	return &cp, nil
}

// GetByEmail returns the user with the given email, or nil.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID returns the user with the given id, or nil.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Update applies the non-empty fields of upd to the user with the given id.
func (db *DB) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var target *domain.User
	for _, u := range db.users {
		if u.ID == id {
			target = u
			break
		}
	}
	if target == nil {
		return false, nil
	}

	if upd.Email != "" && upd.Email != target.Email {
		for _, u := range db.users {
			if u.Email == upd.Email {
				return false, domain.ErrDuplicateEmail
			}
		}
		target.Email = upd.Email
	}
	if upd.PasswordHash != "" {
		target.PasswordHash = upd.PasswordHash
	}
	return true, nil
}

// Count returns the number of stored users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}
