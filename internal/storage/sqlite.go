// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/legalbot/jai/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		embedding BLOB NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_answers_source ON answers(source);

	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateAnswer inserts a single answer record.
func (s *SQLiteStore) CreateAnswer(ctx context.Context, rec *models.AnswerRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (id, question, answer, embedding, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Question, rec.Answer, float32SliceToBytes(rec.Embedding), rec.Source, rec.CreatedAt,
	)
	return err
}

// BatchCreateAnswers inserts multiple answer records in a transaction.
func (s *SQLiteStore) BatchCreateAnswers(ctx context.Context, recs []*models.AnswerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertAnswers(ctx, tx, recs); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAnswersBySource atomically replaces all records from one source with recs.
// Used by ingestion so re-reading a file never duplicates its rows.
func (s *SQLiteStore) ReplaceAnswersBySource(ctx context.Context, source string, recs []*models.AnswerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE source = ?`, source); err != nil {
		return err
	}
	if err := insertAnswers(ctx, tx, recs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAnswers(ctx context.Context, tx *sql.Tx, recs []*models.AnswerRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO answers (id, question, answer, embedding, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Question, rec.Answer,
			float32SliceToBytes(rec.Embedding), rec.Source, rec.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// ListAnswers returns all answer records in insertion order.
func (s *SQLiteStore) ListAnswers(ctx context.Context) ([]*models.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, embedding, source, created_at
		 FROM answers ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.AnswerRecord
	for rows.Next() {
		var rec models.AnswerRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &blob, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Embedding = bytesToFloat32Slice(blob)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// DeleteAnswersBySource removes all records ingested from source and returns the count removed.
func (s *SQLiteStore) DeleteAnswersBySource(ctx context.Context, source string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM answers WHERE source = ?`, source)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountAnswers returns the total number of answer records.
func (s *SQLiteStore) CountAnswers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers`).Scan(&count)
	return count, err
}

// CreateUser inserts a user. Returns ErrUserExists when the username is taken;
// the existing record is left untouched.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrUserExists
	}
	return err
}

// GetUser returns a user by username. Returns ErrUserNotFound when absent.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, name, email, password_hash, created_at
		 FROM users WHERE username = ?`, username,
	).Scan(&u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// float32SliceToBytes encodes a vector as little-endian float32 bytes for BLOB storage.
func float32SliceToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a little-endian float32 BLOB back into a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
