package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	"github.com/AyushPithale/social-platform-gateway/internal/repository"
)

const (
	minContentLength = 3
	maxContentLength = 500
	maxMediaIDs      = 10

	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostCacheTTLs holds the lifetimes applied to cached reads.
type PostCacheTTLs struct {
	Page time.Duration
	Item time.Duration
}

// PostService handles post writes and the read-through cached read path.
type PostService struct {
	posts       port.PostRepository
	cache       port.PostCache
	invalidator *CacheInvalidator
	publisher   port.EventPublisher
	ttls        PostCacheTTLs
	logger      *zap.Logger
	group       singleflight.Group
	now         func() time.Time
}

// NewPostService constructs a post service.
func NewPostService(
	posts port.PostRepository,
	cache port.PostCache,
	invalidator *CacheInvalidator,
	publisher port.EventPublisher,
	ttls PostCacheTTLs,
	log *zap.Logger,
) *PostService {
	if ttls.Page <= 0 {
		ttls.Page = 5 * time.Minute
	}
	if ttls.Item <= 0 {
		ttls.Item = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PostService{
		posts:       posts,
		cache:       cache,
		invalidator: invalidator,
		publisher:   publisher,
		ttls:        ttls,
		logger:      log,
		now:         time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *PostService) WithClock(now func() time.Time) *PostService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreatePost persists a new post for the authenticated user and invalidates
// stale cache entries before returning.
func (s *PostService) CreatePost(ctx context.Context, userID, content string, mediaIDs []string) (*domain.Post, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewAuthenticationError("authentication required")
	}

	content = strings.TrimSpace(content)
	if len(content) < minContentLength || len(content) > maxContentLength {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"content must be between %d and %d characters", minContentLength, maxContentLength,
		))
	}
	if len(mediaIDs) > maxMediaIDs {
		return nil, domain.NewValidationError(fmt.Sprintf("at most %d media attachments allowed", maxMediaIDs))
	}
	if mediaIDs == nil {
		mediaIDs = []string{}
	}

	post := domain.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		MediaIDs:  mediaIDs,
		CreatedAt: s.now().UTC(),
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, domain.NewInternalError("could not create post", err)
	}

	s.invalidator.OnPostWrite(ctx, post.ID)
	s.publishCreated(ctx, post)

	s.logger.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("user_id", post.UserID),
	)

	return &post, nil
}

// GetPost serves a single post, preferring the cache and falling back to the
// persistent store on a miss. Concurrent misses for the same identifier are
// coalesced into one store read.
func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("post id is required")
	}

	if cached, err := s.cache.GetPost(ctx, id); err != nil {
		s.logger.Warn("cache post read failed",
			zap.String("post_id", id),
			zap.Error(err),
		)
	} else if cached != nil {
		return cached, nil
	}

	result, err, _ := s.group.Do("post:"+id, func() (any, error) {
		post, err := s.posts.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.NewNotFoundError("post not found")
			}
			return nil, domain.NewInternalError("could not load post", err)
		}

		if err := s.cache.SetPost(ctx, id, post, s.ttls.Item); err != nil {
			s.logger.Warn("cache post write failed",
				zap.String("post_id", id),
				zap.Error(err),
			)
		}

		return post, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.Post), nil
}

// ListPosts serves one page of posts ordered newest first, read-through
// cached. Out-of-range page numbers resolve from the store and yield an
// empty page, which is cached like any other.
func (s *PostService) ListPosts(ctx context.Context, page, pageSize int) (*domain.PostPage, error) {
	if page <= 0 {
		page = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		return nil, domain.NewValidationError(fmt.Sprintf("page size must be at most %d", maxPageSize))
	}

	if cached, err := s.cache.GetPage(ctx, page, pageSize); err != nil {
		s.logger.Warn("cache page read failed",
			zap.Int("page", page),
			zap.Int("page_size", pageSize),
			zap.Error(err),
		)
	} else if cached != nil {
		return cached, nil
	}

	key := fmt.Sprintf("posts:%d:%d", page, pageSize)
	result, err, _ := s.group.Do(key, func() (any, error) {
		offset := (page - 1) * pageSize

		posts, err := s.posts.List(ctx, offset, pageSize)
		if err != nil {
			return nil, domain.NewInternalError("could not list posts", err)
		}

		total, err := s.posts.Count(ctx)
		if err != nil {
			return nil, domain.NewInternalError("could not count posts", err)
		}

		totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
		pageResult := &domain.PostPage{
			Posts:       posts,
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalPosts:  total,
		}

		if err := s.cache.SetPage(ctx, page, pageSize, pageResult, s.ttls.Page); err != nil {
			s.logger.Warn("cache page write failed",
				zap.Int("page", page),
				zap.Int("page_size", pageSize),
				zap.Error(err),
			)
		}

		return pageResult, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.PostPage), nil
}

// DeletePost removes a post owned by the requesting user. A post owned by
// someone else is rejected before any state changes.
func (s *PostService) DeletePost(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.NewAuthenticationError("authentication required")
	}
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("post id is required")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("post not found")
		}
		return domain.NewInternalError("could not load post", err)
	}

	if post.UserID != userID {
		return domain.NewAuthorizationError("you do not own this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("post not found")
		}
		return domain.NewInternalError("could not delete post", err)
	}

	s.invalidator.OnPostWrite(ctx, id)
	s.publishDeleted(ctx, *post)

	s.logger.Info("post deleted",
		zap.String("post_id", id),
		zap.String("user_id", userID),
	)

	return nil
}

func (s *PostService) publishCreated(ctx context.Context, post domain.Post) {
	if s.publisher == nil {
		return
	}

	event := domain.PostCreatedEvent{
		EventID:   uuid.NewString(),
		PostID:    post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		MediaIDs:  post.MediaIDs,
		CreatedAt: post.CreatedAt,
	}
	if err := s.publisher.PublishPostCreated(ctx, event); err != nil {
		s.logger.Warn("publish post created event failed",
			zap.String("post_id", post.ID),
			zap.Error(err),
		)
	}
}

func (s *PostService) publishDeleted(ctx context.Context, post domain.Post) {
	if s.publisher == nil {
		return
	}

	event := domain.PostDeletedEvent{
		EventID:   uuid.NewString(),
		PostID:    post.ID,
		UserID:    post.UserID,
		MediaIDs:  post.MediaIDs,
		DeletedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishPostDeleted(ctx, event); err != nil {
		s.logger.Warn("publish post deleted event failed",
			zap.String("post_id", post.ID),
			zap.Error(err),
		)
	}
}
