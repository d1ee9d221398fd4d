package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
)

// StubPublisher logs events instead of publishing them. Used when no Kafka
// brokers are configured (local development, tests).
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a logging stub publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (s *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	s.logger.Debug("stub publisher: user.registered", zap.String("user_id", event.UserID))
	return nil
}

func (s *StubPublisher) PublishPostCreated(_ context.Context, event domain.PostCreatedEvent) error {
	s.logger.Debug("stub publisher: post.created", zap.String("post_id", event.PostID))
	return nil
}

func (s *StubPublisher) PublishPostDeleted(_ context.Context, event domain.PostDeletedEvent) error {
	s.logger.Debug("stub publisher: post.deleted", zap.String("post_id", event.PostID))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
