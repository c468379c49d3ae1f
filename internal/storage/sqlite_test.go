package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/legalbot/jai/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Answers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &models.AnswerRecord{
		ID:        "a1",
		Question:  "What is bail?",
		Answer:    "A conditional release pending trial.",
		Embedding: []float32{0.25, -0.5, 1.0},
		Source:    "corpus.yaml",
	}
	if err := store.CreateAnswer(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	list, err := store.ListAnswers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	got := list[0]
	if got.Question != rec.Question || got.Answer != rec.Answer {
		t.Errorf("got %+v", got)
	}
	if len(got.Embedding) != 3 || got.Embedding[0] != 0.25 || got.Embedding[1] != -0.5 || got.Embedding[2] != 1.0 {
		t.Errorf("embedding round-trip: got %v", got.Embedding)
	}

	n, err := store.CountAnswers(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountAnswers: %v, %d", err, n)
	}
}

func TestSQLiteStore_ListAnswersInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	recs := []*models.AnswerRecord{
		{ID: "a1", Question: "q1", Answer: "r1", Embedding: []float32{1}},
		{ID: "a2", Question: "q2", Answer: "r2", Embedding: []float32{2}},
		{ID: "a3", Question: "q3", Answer: "r3", Embedding: []float32{3}},
	}
	if err := store.BatchCreateAnswers(ctx, recs); err != nil {
		t.Fatal(err)
	}

	list, err := store.ListAnswers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	for i, want := range []string{"a1", "a2", "a3"} {
		if list[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, list[i].ID, want)
		}
	}
}

func TestSQLiteStore_ReplaceAnswersBySource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.BatchCreateAnswers(ctx, []*models.AnswerRecord{
		{ID: "a1", Question: "q1", Answer: "r1", Embedding: []float32{1}, Source: "f1.yaml"},
		{ID: "a2", Question: "q2", Answer: "r2", Embedding: []float32{2}, Source: "f2.yaml"},
	})

	err := store.ReplaceAnswersBySource(ctx, "f1.yaml", []*models.AnswerRecord{
		{ID: "b1", Question: "q1b", Answer: "r1b", Embedding: []float32{3}, Source: "f1.yaml"},
		{ID: "b2", Question: "q1c", Answer: "r1c", Embedding: []float32{4}, Source: "f1.yaml"},
	})
	if err != nil {
		t.Fatal(err)
	}

	list, _ := store.ListAnswers(ctx)
	if len(list) != 3 {
		t.Fatalf("expected 3 records after replace, got %d", len(list))
	}
	// f2.yaml record untouched, f1.yaml rows replaced
	ids := map[string]bool{}
	for _, rec := range list {
		ids[rec.ID] = true
	}
	if !ids["a2"] || !ids["b1"] || !ids["b2"] || ids["a1"] {
		t.Errorf("unexpected record set: %v", ids)
	}

	n, err := store.DeleteAnswersBySource(ctx, "f1.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &models.User{
		Username:     "alice",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
	}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Alice" || got.PasswordHash != "$2a$10$hash" {
		t.Errorf("got %+v", got)
	}

	_, err = store.GetUser(ctx, "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	n, err := store.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountUsers: %v, %d", err, n)
	}
}

func TestSQLiteStore_CreateUserDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.User{Username: "bob", Name: "Bob", PasswordHash: "hash1"}
	if err := store.CreateUser(ctx, first); err != nil {
		t.Fatal(err)
	}

	dup := &models.User{Username: "bob", Name: "Intruder", PasswordHash: "hash2"}
	err := store.CreateUser(ctx, dup)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, _ := store.GetUser(ctx, "bob")
	if got.Name != "Bob" || got.PasswordHash != "hash1" {
		t.Errorf("existing record modified by failed duplicate: %+v", got)
	}
}
