package domain

import "time"

// UserRegisteredEvent is published after a new account is created.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	RegisteredAt time.Time
}

// PostCreatedEvent is published after a post write commits. Downstream
// consumers (e.g. search indexing) key off the post identifier.
type PostCreatedEvent struct {
	EventID   string
	PostID    string
	UserID    string
	Content   string
	MediaIDs  []string
	CreatedAt time.Time
}

// PostDeletedEvent is published after a post delete commits.
type PostDeletedEvent struct {
	EventID   string
	PostID    string
	UserID    string
	MediaIDs  []string
	DeletedAt time.Time
}
