// Package storage defines the persistence interface for answers and users.
package storage

import (
	"context"
	"errors"

	"github.com/legalbot/jai/internal/models"
)

// ErrUserExists is returned when registering a username that is already taken.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a username has no stored record.
var ErrUserNotFound = errors.New("user not found")

// Store defines answer and user persistence operations.
type Store interface {
	// Answer operations. ListAnswers returns every record in insertion
	// order; corpus loading depends on getting the whole set in one call.
	CreateAnswer(ctx context.Context, rec *models.AnswerRecord) error
	BatchCreateAnswers(ctx context.Context, recs []*models.AnswerRecord) error
	ListAnswers(ctx context.Context) ([]*models.AnswerRecord, error)
	ReplaceAnswersBySource(ctx context.Context, source string, recs []*models.AnswerRecord) error
	DeleteAnswersBySource(ctx context.Context, source string) (int64, error)
	CountAnswers(ctx context.Context) (int64, error)

	// User operations
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	Close() error
}
