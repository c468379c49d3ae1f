package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserPasswordHashNotSerialized(t *testing.T) {
	u := User{
		Username:     "alice",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		CreatedAt:    time.Now(),
	}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
	if strings.Contains(string(data), "password") {
		t.Errorf("password field present in JSON: %s", data)
	}
}

func TestAnswerRecordEmbeddingNotSerialized(t *testing.T) {
	r := AnswerRecord{
		ID:        "r1",
		Question:  "What is bail?",
		Answer:    "A conditional release.",
		Embedding: []float32{0.1, 0.2},
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "embedding") {
		t.Errorf("embedding leaked into JSON: %s", data)
	}
}
