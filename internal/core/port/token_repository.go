package port

import (
	"context"
	"time"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// TokenRepository manages opaque refresh handle records.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	MarkRefreshTokenUsed(ctx context.Context, id string, usedAt time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
