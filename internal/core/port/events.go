package port

import (
	"context"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// EventPublisher emits domain events for downstream consumers. Publishing is
// best-effort: a failed publish never fails the triggering request.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPostCreated(ctx context.Context, event domain.PostCreatedEvent) error
	PublishPostDeleted(ctx context.Context, event domain.PostDeletedEvent) error
}
