// Package auth implements credential verification, registration, and
// signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/internal/storage"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password. Callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrMissingField is returned by Register when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// UserStore is the slice of the store the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Service registers accounts and verifies credentials.
type Service struct {
	store UserStore
}

// NewService creates an auth service over the given user store.
func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// Register creates an account with a bcrypt-hashed password. Returns
// storage.ErrUserExists when the username is taken; the existing account
// is not modified.
func (s *Service) Register(ctx context.Context, username, name, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingField)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingField)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies a username/password pair. Unknown users and wrong
// passwords both return ErrInvalidCredentials; store failures surface as
// distinct internal errors.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
