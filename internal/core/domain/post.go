package domain

import "time"

// Post is the authoritative resource record owned by the persistent store.
// Cache layers hold only serialized read copies of it.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	MediaIDs  []string  `json:"mediaIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostPage is a paginated listing snapshot. Instances of it are what the
// listing cache stores, so the field set is part of the cache entry format.
type PostPage struct {
	Posts       []Post `json:"posts"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalPosts  int64  `json:"totalPosts"`
}
