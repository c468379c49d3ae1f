// Package models defines core data structures for answers, users, and conversations.
package models

import "time"

// AnswerRecord is one stored question/answer pair with the embedding of its
// reference question. Records are immutable once loaded into a corpus.
type AnswerRecord struct {
	ID        string    `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Embedding []float32 `json:"-" db:"-"`
	Source    string    `json:"source,omitempty" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match is the result of one retrieval: the closest record, its cosine
// similarity against the query, and its position in the corpus.
type Match struct {
	Record *AnswerRecord `json:"record"`
	Score  float64       `json:"score"`
	Index  int           `json:"index"`
}
