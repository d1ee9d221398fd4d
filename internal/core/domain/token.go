package domain

import "time"

// RefreshToken represents a persisted opaque refresh handle. Only the
// SHA-256 hash of the raw value is stored; the raw value travels to the
// client exactly once at issuance.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// IsExpired reports whether the handle has elapsed its validity window.
func (t RefreshToken) IsExpired(at time.Time) bool {
	return !t.ExpiresAt.After(at)
}

// IsActive returns true when the handle can still be redeemed. Handles are
// single-use: redemption marks them used and they are never honored again.
func (t RefreshToken) IsActive(at time.Time) bool {
	if t.UsedAt != nil {
		return false
	}
	return !t.IsExpired(at)
}

// MarkUsed records the moment the handle was redeemed.
// Returns true if the value changed (i.e. the handle was previously unused).
func (t *RefreshToken) MarkUsed(at time.Time) bool {
	if t.UsedAt != nil {
		return false
	}
	timeCopy := at
	t.UsedAt = &timeCopy
	return true
}
