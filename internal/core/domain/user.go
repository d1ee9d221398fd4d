package domain

import "time"

// User mirrors the persisted representation in the users table.
// PasswordHash is never serialized to API responses.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
