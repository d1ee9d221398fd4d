package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
)

// CacheInvalidator drops cached entries made stale by a persistent write.
// Invalidation runs synchronously between the write commit and the response,
// so a client that reads immediately after its own write sees fresh data.
//
// Deletion failures are logged and swallowed: the authoritative store already
// holds the new state, and entry TTLs bound how long a stale copy can
// survive a failed delete.
type CacheInvalidator struct {
	cache  port.PostCache
	logger *zap.Logger
}

// NewCacheInvalidator constructs an invalidator over the shared cache.
func NewCacheInvalidator(cache port.PostCache, log *zap.Logger) *CacheInvalidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &CacheInvalidator{cache: cache, logger: log}
}

// OnPostWrite removes the single-post entry and every cached page. Pages are
// invalidated coarsely because any insert or delete can shift the membership
// of every page.
func (i *CacheInvalidator) OnPostWrite(ctx context.Context, postID string) {
	if i.cache == nil {
		return
	}

	if err := i.cache.DeletePost(ctx, postID); err != nil {
		i.logger.Warn("cache post invalidation failed",
			zap.String("post_id", postID),
			zap.Error(err),
		)
	}

	dropped, err := i.cache.DeleteAllPages(ctx)
	if err != nil {
		i.logger.Warn("cache page invalidation failed",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return
	}

	i.logger.Debug("cache pages invalidated",
		zap.String("post_id", postID),
		zap.Int64("dropped", dropped),
	)
}
