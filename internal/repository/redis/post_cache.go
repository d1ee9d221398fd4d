package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
)

// PostCacheConfig defines configuration for the post cache store.
type PostCacheConfig struct {
	KeyPrefix string
}

// PostCacheRepository stores serialized posts and post pages in Redis.
//
// Page keys share a common prefix so a single SCAN pattern enumerates every
// cached page regardless of its page number or page size. That enumerability
// is what makes coarse write-driven invalidation possible without tracking
// which pages exist.
type PostCacheRepository struct {
	client *redis.Client
	cfg    PostCacheConfig
}

// NewPostCacheRepository constructs a repository using the provided Redis client and config.
func NewPostCacheRepository(client *redis.Client, cfg PostCacheConfig) *PostCacheRepository {
	return &PostCacheRepository{client: client, cfg: cfg}
}

// GetPage retrieves a cached page, returning nil on miss.
func (r *PostCacheRepository) GetPage(ctx context.Context, page, pageSize int) (*domain.PostPage, error) {
	payload, err := r.client.Get(ctx, r.pageKey(page, pageSize)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get page: %w", err)
	}

	var result domain.PostPage
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached page: %w", err)
	}

	return &result, nil
}

// SetPage stores a page under its page/pageSize key with the supplied TTL.
func (r *PostCacheRepository) SetPage(ctx context.Context, page, pageSize int, value *domain.PostPage, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}

	if err := r.client.Set(ctx, r.pageKey(page, pageSize), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set page: %w", err)
	}

	return nil
}

// GetPost retrieves a cached post, returning nil on miss.
func (r *PostCacheRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	payload, err := r.client.Get(ctx, r.postKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get post: %w", err)
	}

	var result domain.Post
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached post: %w", err)
	}

	return &result, nil
}

// SetPost stores a single post with the supplied TTL.
func (r *PostCacheRepository) SetPost(ctx context.Context, id string, value *domain.Post, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	if err := r.client.Set(ctx, r.postKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set post: %w", err)
	}

	return nil
}

// DeletePost drops the cached entry for a single post. Deleting a key that
// does not exist is not an error.
func (r *PostCacheRepository) DeletePost(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.postKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete post: %w", err)
	}
	return nil
}

// DeleteAllPages scans for every cached page key and removes them, returning
// how many keys were dropped.
func (r *PostCacheRepository) DeleteAllPages(ctx context.Context) (int64, error) {
	pattern := fmt.Sprintf("%s:posts:*", r.cfg.KeyPrefix)

	var deleted int64
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			n, err := r.client.Del(ctx, batch...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis delete pages: %w", err)
			}
			deleted += n
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan pages: %w", err)
	}

	if len(batch) > 0 {
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis delete pages: %w", err)
		}
		deleted += n
	}

	return deleted, nil
}

func (r *PostCacheRepository) pageKey(page, pageSize int) string {
	return fmt.Sprintf("%s:posts:%d:%d", r.cfg.KeyPrefix, page, pageSize)
}

func (r *PostCacheRepository) postKey(id string) string {
	return fmt.Sprintf("%s:post:%s", r.cfg.KeyPrefix, id)
}

var _ port.PostCache = (*PostCacheRepository)(nil)
