package port

import (
	"context"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// UserRepository exposes persistence behavior for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
