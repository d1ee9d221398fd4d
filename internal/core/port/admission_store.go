package port

import (
	"context"
	"time"
)

// AdmissionStore persists fixed-window request counters in a store shared
// by every process instance. IncrementWindow must be atomic with respect to
// concurrent callers on the same key: the returned count is the position of
// this request inside the current window, and retryAfter is the time left
// until the window resets.
type AdmissionStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (count int64, retryAfter time.Duration, err error)
}
