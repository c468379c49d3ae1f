package models

import "time"

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login. The session itself
// travels in the cookie.
type LoginResponse struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AskRequest is the payload for asking a question.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is returned for an answered question.
type AskResponse struct {
	Question        string  `json:"question"`
	Answer          string  `json:"answer"`
	MatchedQuestion string  `json:"matched_question"`
	Score           float64 `json:"score"`
}

// HistoryResponse lists a session's conversation turns, oldest first.
type HistoryResponse struct {
	Turns []ConversationTurn `json:"turns"`
}

// StatusResponse reports corpus and store state.
type StatusResponse struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	Answers        int       `json:"answers"`
	Users          int       `json:"users"`
	Dimensions     int       `json:"dimensions"`
	Provider       string    `json:"embedding_provider"`
	CorpusLoadedAt time.Time `json:"corpus_loaded_at"`
	DiskUsageBytes int64     `json:"disk_usage_bytes"`
}
