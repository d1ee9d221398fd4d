package port

import (
	"context"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// PostRepository exposes persistence behavior for posts. The persistent
// store is authoritative; cache layers hold only derived copies.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context, offset, limit int) ([]domain.Post, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}
