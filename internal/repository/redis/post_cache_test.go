package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

func samplePost(id string) *domain.Post {
	return &domain.Post{
		ID:        id,
		UserID:    "user-1",
		Content:   "hello world",
		MediaIDs:  []string{"media-1"},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostCacheRepository_PostRoundTrip(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewPostCacheRepository(client, PostCacheConfig{KeyPrefix: "content"})

	ctx := context.Background()
	post := samplePost("post-1")

	if err := repo.SetPost(ctx, post.ID, post, time.Hour); err != nil {
		t.Fatalf("SetPost returned error: %v", err)
	}

	got, err := repo.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.ID != post.ID || got.Content != post.Content || !got.CreatedAt.Equal(post.CreatedAt) {
		t.Fatalf("cached post mismatch: %+v", got)
	}

	remaining := server.TTL("content:post:post-1")
	if remaining <= 0 || remaining > time.Hour {
		t.Fatalf("expected ttl within (0, 1h], got %v", remaining)
	}
}

func TestPostCacheRepository_MissReturnsNil(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewPostCacheRepository(client, PostCacheConfig{KeyPrefix: "content"})

	got, err := repo.GetPost(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}

	page, err := repo.GetPage(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if page != nil {
		t.Fatalf("expected miss, got %+v", page)
	}
}

func TestPostCacheRepository_PageRoundTrip(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewPostCacheRepository(client, PostCacheConfig{KeyPrefix: "content"})

	ctx := context.Background()
	page := &domain.PostPage{
		Posts:       []domain.Post{*samplePost("post-1"), *samplePost("post-2")},
		CurrentPage: 2,
		TotalPages:  5,
		TotalPosts:  42,
	}

	if err := repo.SetPage(ctx, 2, 10, page, 5*time.Minute); err != nil {
		t.Fatalf("SetPage returned error: %v", err)
	}

	got, err := repo.GetPage(ctx, 2, 10)
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if len(got.Posts) != 2 || got.CurrentPage != 2 || got.TotalPosts != 42 {
		t.Fatalf("cached page mismatch: %+v", got)
	}
}

func TestPostCacheRepository_PageKeysDistinctByPageSize(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewPostCacheRepository(client, PostCacheConfig{KeyPrefix: "content"})

	ctx := context.Background()

	if err := repo.SetPage(ctx, 1, 10, &domain.PostPage{CurrentPage: 1, TotalPosts: 10}, time.Minute); err != nil {
		t.Fatalf("SetPage returned error: %v", err)
	}
	if err := repo.SetPage(ctx, 1, 20, &domain.PostPage{CurrentPage: 1, TotalPosts: 20}, time.Minute); err != nil {
		t.Fatalf("SetPage returned error: %v", err)
	}

	got, err := repo.GetPage(ctx, 1, 10)
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if got == nil || got.TotalPosts != 10 {
		t.Fatalf("expected page sized 10, got %+v", got)
	}
}

func TestPostCacheRepository_DeleteAllPages(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewPostCacheRepository(client, PostCacheConfig{KeyPrefix: "content"})

	ctx := context.Background()

	for page := 1; page <= 150; page++ {
		if err := repo.SetPage(ctx, page, 10, &domain.PostPage{CurrentPage: page}, time.Minute); err != nil {
			t.Fatalf("SetPage returned error: %v", err)
		}
	}
	if err := repo.SetPost(ctx, "post-1", samplePost("post-1"), time.Hour); err != nil {
		t.Fatalf("SetPost returned error: %v", err)
	}

	deleted, err := repo.DeleteAllPages(ctx)
	if err != nil {
		t.Fatalf("DeleteAllPages returned error: %v", err)
	}
	if deleted != 150 {
		t.Fatalf("expected 150 dropped page keys, got %d", deleted)
	}

	for page := 1; page <= 150; page++ {
		if server.Exists(fmt.Sprintf("content:posts:%d:10", page)) {
			t.Fatalf("expected page %d key to be deleted", page)
		}
	}

	// Single-post entries survive page invalidation.
	if !server.Exists("content:post:post-1") {
		t.Fatal("expected post key to survive page invalidation")
	}
}

func TestPostCacheRepository_DeletePost(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewPostCacheRepository(client, PostCacheConfig{KeyPrefix: "content"})

	ctx := context.Background()

	if err := repo.SetPost(ctx, "post-1", samplePost("post-1"), time.Hour); err != nil {
		t.Fatalf("SetPost returned error: %v", err)
	}
	if err := repo.DeletePost(ctx, "post-1"); err != nil {
		t.Fatalf("DeletePost returned error: %v", err)
	}
	if server.Exists("content:post:post-1") {
		t.Fatal("expected post key to be deleted")
	}

	// Deleting an absent key is a no-op.
	if err := repo.DeletePost(ctx, "post-1"); err != nil {
		t.Fatalf("DeletePost on absent key returned error: %v", err)
	}
}
