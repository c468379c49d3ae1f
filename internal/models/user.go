package models

import "time"

// User is a registered account. PasswordHash holds a bcrypt hash and is
// never serialized.
type User struct {
	Username     string    `json:"username" db:"username"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
