package postgres

import (
	"context"
	"database/sql"
	"errors"

	"propal/internal/domain"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code raised when an insert or
// update races on the unique email index.
const uniqueViolation = "23505"

var _ domain.UserRepository = (*DB)(nil)

// Create stores a new user. The store generates the id and enforces email
// uniqueness atomically.
func (d *DB) Create(ctx context.Context, username, email, passwordHash, phone string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, phone)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, username, email, password_hash, phone, created_at`,
		username, email, passwordHash, phone,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.CreatedAt)
	if err != nil {
		return nil, mapUnique(err)
	}
	return &u, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.getBy(ctx, "email", email)
}

// GetByID retrieves a user by id. Returns (nil, nil) when absent.
func (d *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return d.getBy(ctx, "id", id)
}

func (d *DB) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, phone, created_at FROM users WHERE "+column+" = $1",
		value,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies the non-empty fields of upd to the user with the given id.
func (d *DB) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE users
		 SET email = COALESCE(NULLIF($1, ''), email),
		     password_hash = COALESCE(NULLIF($2, ''), password_hash)
		 WHERE id = $3`,
		upd.Email, upd.PasswordHash, id,
	)
	if err != nil {
		return false, mapUnique(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func mapUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}
	return err
}
