package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/internal/storage"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, u *models.User) error {
	if _, ok := f.users[u.Username]; ok {
		return storage.ErrUserExists
	}
	f.users[u.Username] = u
	return nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "Alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if u.PasswordHash == "s3cret" || u.PasswordHash == "" {
		t.Error("password should be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	got, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "alice" || got.Name != "Alice" {
		t.Errorf("login returned %+v", got)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "X", "x@example.com", "pw"); !errors.Is(err, ErrMissingField) {
		t.Errorf("empty username: got %v, want ErrMissingField", err)
	}
	if _, err := svc.Register(ctx, "  ", "X", "x@example.com", "pw"); !errors.Is(err, ErrMissingField) {
		t.Errorf("whitespace username: got %v, want ErrMissingField", err)
	}
	if _, err := svc.Register(ctx, "x", "X", "x@example.com", ""); !errors.Is(err, ErrMissingField) {
		t.Errorf("empty password: got %v, want ErrMissingField", err)
	}
}

func TestService_RegisterDuplicate(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "Bob", "", "pw1"); err != nil {
		t.Fatal(err)
	}
	original := store.users["bob"].PasswordHash

	_, err := svc.Register(ctx, "bob", "Mallory", "", "pw2")
	if !errors.Is(err, storage.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if store.users["bob"].PasswordHash != original || store.users["bob"].Name != "Bob" {
		t.Error("failed duplicate registration modified the existing account")
	}
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "Carol", "", "right"); err != nil {
		t.Fatal(err)
	}

	_, unknownErr := svc.Login(ctx, "nobody", "whatever")
	_, wrongPwErr := svc.Login(ctx, "carol", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", unknownErr)
	}
	if !errors.Is(wrongPwErr, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", wrongPwErr)
	}
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", unknownErr, wrongPwErr)
	}
}
