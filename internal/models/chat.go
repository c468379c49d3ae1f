package models

import "time"

// ConversationTurn is one question/answer exchange in a session's history.
type ConversationTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}
