// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"propal/internal/domain"
	"propal/internal/token"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidInput indicates missing or malformed request input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials indicates that the provided email or password was
	// incorrect. Absent user and wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, malformed or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// dummyHash is compared against when a login targets a nonexistent email so
// that both failure paths run a bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("propal-no-such-user"), bcrypt.DefaultCost)

// AuthService handles signup, login, session-token verification and profile
// updates.
type AuthService struct {
	users    domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new authentication service. Tokens are signed with
// secret and expire tokenTTL after issuance.
func NewAuthService(users domain.UserRepository, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Signup registers a new user. Username, email and password are required;
// phone is optional. The password is stored only as a bcrypt hash.
func (s *AuthService) Signup(ctx context.Context, username, email, password, phone string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash), phone)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a session token bound to the
// user's id.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		// Equalize cost with the found-user path.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tok, err := token.Issue(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return tok, user, nil
}

// Authenticate verifies a session token and returns the bound user id.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrUnauthenticated
	}
	userID, err := token.Verify(tokenString, s.secret)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// LoginSSO issues a session token for a user authenticated by an external
// identity provider, creating the account on first login. Provisioned
// accounts get an unguessable random password so they can only ever log in
// via SSO.
func (s *AuthService) LoginSSO(ctx context.Context, username, email string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil, ErrInvalidInput
	}
	if username == "" {
		username = email
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		hash, err := randomPasswordHash()
		if err != nil {
			return "", nil, err
		}
		user, err = s.users.Create(ctx, username, email, hash, "")
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// Lost a provisioning race; the other request created the account.
			user, err = s.users.GetByEmail(ctx, email)
			if err == nil && user == nil {
				err = ErrUserNotFound
			}
		}
		if err != nil {
			return "", nil, err
		}
	}

	tok, err := token.Issue(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return tok, user, nil
}

func randomPasswordHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword(b, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// UpdateProfile applies the requested email and/or password change for the
// already-authenticated user. Token possession is the authorization proof; the
// current password is not re-checked.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, newEmail, newPassword string) error {
	upd := domain.ProfileUpdate{Email: strings.TrimSpace(newEmail)}
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = string(hash)
	}
	if upd.IsZero() {
		return ErrInvalidInput
	}

	found, err := s.users.Update(ctx, userID, upd)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}
