package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"propal/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &DB{sql: db}, mock
}

const userColumns = "id, username, email, password_hash, phone, created_at"

func TestCreate(t *testing.T) {
	d, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("jo", "a@b.com", "hash", "123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "phone", "created_at"}).
			AddRow("uuid-1", "jo", "a@b.com", "hash", "123", now))

	u, err := d.Create(context.Background(), "jo", "a@b.com", "hash", "123")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != "uuid-1" || u.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("jo", "a@b.com", "hash", "").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := d.Create(context.Background(), "jo", "a@b.com", "hash", "")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE email = $1")).
		WithArgs("missing@b.com").
		WillReturnError(sql.ErrNoRows)

	u, err := d.GetByEmail(context.Background(), "missing@b.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got %+v", u)
	}
}

func TestGetByID(t *testing.T) {
	d, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE id = $1")).
		WithArgs("uuid-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "phone", "created_at"}).
			AddRow("uuid-1", "jo", "a@b.com", "hash", "", now))

	u, err := d.GetByID(context.Background(), "uuid-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if u == nil || u.Username != "jo" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUpdate(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("new@b.com", "", "uuid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := d.Update(context.Background(), "uuid-1", domain.ProfileUpdate{Email: "new@b.com"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !found {
		t.Fatal("expected found")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("", "newhash", "uuid-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := d.Update(context.Background(), "uuid-gone", domain.ProfileUpdate{PasswordHash: "newhash"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestUpdate_DuplicateEmail(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("taken@b.com", "", "uuid-1").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := d.Update(context.Background(), "uuid-1", domain.ProfileUpdate{Email: "taken@b.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}
