package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
)

// AdmissionConfig defines configuration for the fixed-window counter store.
type AdmissionConfig struct {
	KeyPrefix string
}

// AdmissionRepository keeps fixed-window request counters in Redis so that
// every service replica shares one view of consumption per identity.
type AdmissionRepository struct {
	client *redis.Client
	cfg    AdmissionConfig
}

// NewAdmissionRepository constructs a repository using the provided Redis client and config.
func NewAdmissionRepository(client *redis.Client, cfg AdmissionConfig) *AdmissionRepository {
	return &AdmissionRepository{client: client, cfg: cfg}
}

// IncrementWindow atomically bumps the counter for the current window and
// returns the post-increment count plus the time remaining until the window
// resets. The expiry is set only when absent, so the window anchors to the
// first request that opened it rather than sliding with each increment.
func (r *AdmissionRepository) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		return 0, 0, fmt.Errorf("window must be positive")
	}

	fullKey := r.key(key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	ttl := pipe.PTTL(ctx, fullKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("redis admission pipeline: %w", err)
	}

	count := incr.Val()

	retryAfter := ttl.Val()
	if retryAfter < 0 {
		// PTTL reports a negative duration when the key somehow has no
		// expiry; fall back to the full window rather than zero.
		retryAfter = window
	}

	return count, retryAfter, nil
}

func (r *AdmissionRepository) key(identifier string) string {
	if r.cfg.KeyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, identifier)
}

var _ port.AdmissionStore = (*AdmissionRepository)(nil)
