package port

import (
	"context"
	"time"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// PostCache is the shared-store cache surface consumed by the read-through
// path and by write-driven invalidation. A nil-result, nil-error pair from
// the getters signals a cache miss.
type PostCache interface {
	GetPage(ctx context.Context, page, pageSize int) (*domain.PostPage, error)
	SetPage(ctx context.Context, page, pageSize int, value *domain.PostPage, ttl time.Duration) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	SetPost(ctx context.Context, id string, value *domain.Post, ttl time.Duration) error
	DeletePost(ctx context.Context, id string) error
	DeleteAllPages(ctx context.Context) (int64, error)
}
