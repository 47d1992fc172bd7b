package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"propal/internal/adapter/memory"
	"propal/internal/domain"
	"propal/internal/token"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, username, email, passwordHash, phone string) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn     func(ctx context.Context, id string, upd domain.ProfileUpdate) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, username, email, passwordHash, phone string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, email, passwordHash, phone)
	}
	return &domain.User{ID: "u1", Username: username, Email: email, PasswordHash: passwordHash, Phone: phone}, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return true, nil
}

var testSecret = []byte("test-secret")

func newTestService(repo domain.UserRepository) *AuthService {
	return NewAuthService(repo, testSecret, 30*time.Hour)
}

func TestSignup_HashesPassword(t *testing.T) {
	ctx := context.Background()
	var storedHash string
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, username, email, passwordHash, phone string) (*domain.User, error) {
			storedHash = passwordHash
			return &domain.User{ID: "u1", Username: username, Email: email, PasswordHash: passwordHash}, nil
		},
	}

	u, err := newTestService(repo).Signup(ctx, "jo", "a@b.com", "secret123", "")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if storedHash == "secret123" || !strings.HasPrefix(storedHash, "$2") {
		t.Fatalf("password not bcrypt-hashed: %q", storedHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestSignup_MissingFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&mockUserRepo{})

	cases := [][4]string{
		{"", "a@b.com", "pw", ""},
		{"jo", "", "pw", ""},
		{"jo", "a@b.com", "", ""},
		{"  ", "a@b.com", "pw", ""},
	}
	for _, c := range cases {
		if _, err := svc.Signup(ctx, c[0], c[1], c[2], c[3]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Signup(%q,%q,%q): expected ErrInvalidInput, got %v", c[0], c[1], c[2], err)
		}
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, username, email, passwordHash, phone string) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}

	_, err := newTestService(repo).Signup(ctx, "jo", "a@b.com", "pw", "")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	repo := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Username: "jo", Email: email, PasswordHash: string(hash), Phone: "123"}, nil
		},
	}
	svc := newTestService(repo)

	tok, user, err := svc.Login(ctx, "a@b.com", "correcthorse")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.Username != "jo" || user.Phone != "123" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// The issued token must authenticate back to the same user id.
	userID, err := svc.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected user id u1, got %q", userID)
	}
}

func TestLogin_WrongPasswordAndMissingUserIndistinguishable(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.DefaultCost)

	withUser := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	withoutUser := &mockUserRepo{}

	_, _, errWrongPw := newTestService(withUser).Login(ctx, "a@b.com", "wrongpw")
	_, _, errNoUser := newTestService(withoutUser).Login(ctx, "nobody@b.com", "whatever")

	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPw)
	}
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Fatalf("missing user: expected ErrInvalidCredentials, got %v", errNoUser)
	}
	if errWrongPw.Error() != errNoUser.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrongPw, errNoUser)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&mockUserRepo{})

	expired, err := token.Issue("u1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	foreign, err := token.Issue("u1", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	for _, tok := range []string{"", "garbage", expired, foreign} {
		if _, err := svc.Authenticate(ctx, tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Authenticate(%q): expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestUpdateProfile_NoChanges(t *testing.T) {
	ctx := context.Background()
	err := newTestService(&mockUserRepo{}).UpdateProfile(ctx, "u1", "", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mockUserRepo{
		updateFn: func(ctx context.Context, id string, upd domain.ProfileUpdate) (bool, error) {
			return false, nil
		},
	}

	err := newTestService(repo).UpdateProfile(ctx, "gone", "new@b.com", "")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfile_RehashesPassword(t *testing.T) {
	ctx := context.Background()
	var applied domain.ProfileUpdate
	repo := &mockUserRepo{
		updateFn: func(ctx context.Context, id string, upd domain.ProfileUpdate) (bool, error) {
			applied = upd
			return true, nil
		},
	}

	if err := newTestService(repo).UpdateProfile(ctx, "u1", "", "newpassword"); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if applied.PasswordHash == "newpassword" || !strings.HasPrefix(applied.PasswordHash, "$2") {
		t.Fatalf("new password not re-hashed: %q", applied.PasswordHash)
	}
}

func TestLoginSSO_ProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := newTestService(repo)

	tok1, u1, err := svc.LoginSSO(ctx, "jo", "sso@b.com")
	if err != nil {
		t.Fatalf("LoginSSO error: %v", err)
	}
	tok2, u2, err := svc.LoginSSO(ctx, "jo", "sso@b.com")
	if err != nil {
		t.Fatalf("second LoginSSO error: %v", err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("second login created a new account: %q vs %q", u1.ID, u2.ID)
	}
	if tok1 == "" || tok2 == "" {
		t.Fatal("expected tokens")
	}

	n, _ := repo.Count(ctx)
	if n != 1 {
		t.Fatalf("expected exactly 1 user, got %d", n)
	}

	// SSO accounts must not be reachable with any guessable password.
	if _, _, err := svc.Login(ctx, "sso@b.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// TestPasswordChangeEndToEnd exercises signup, password change and both login
// outcomes against the in-memory repository.
func TestPasswordChangeEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(memory.New())

	u, err := svc.Signup(ctx, "jo", "a@b.com", "oldpw", "")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if err := svc.UpdateProfile(ctx, u.ID, "", "newpw"); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	if _, _, err := svc.Login(ctx, "a@b.com", "oldpw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@b.com", "newpw"); err != nil {
		t.Fatalf("new password: Login error: %v", err)
	}
}
