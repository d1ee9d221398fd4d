package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

func newPostFixture(t *testing.T) (*PostService, *fakePostRepo, *fakePostCache, *fakePublisher) {
	t.Helper()

	repo := newFakePostRepo()
	cache := newFakePostCache()
	publisher := &fakePublisher{}
	log := zaptest.NewLogger(t)

	svc := NewPostService(repo, cache, NewCacheInvalidator(cache, log), publisher, PostCacheTTLs{
		Page: 5 * time.Minute,
		Item: time.Hour,
	}, log)

	return svc, repo, cache, publisher
}

func TestPostService_CreatePost(t *testing.T) {
	svc, repo, _, publisher := newPostFixture(t)

	post, err := svc.CreatePost(context.Background(), "user-1", "hello world", []string{"media-1"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.ID == "" || post.UserID != "user-1" {
		t.Fatalf("unexpected post: %+v", post)
	}

	if _, err := repo.GetByID(context.Background(), post.ID); err != nil {
		t.Fatalf("expected persisted post: %v", err)
	}
	if len(publisher.created) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(publisher.created))
	}
}

func TestPostService_CreatePostValidation(t *testing.T) {
	svc, _, _, _ := newPostFixture(t)

	ctx := context.Background()

	if _, err := svc.CreatePost(ctx, "", "hello", nil); err == nil {
		t.Fatal("expected error for missing user")
	}

	for name, content := range map[string]string{
		"empty":     "   ",
		"too short": "hi",
		"too long":  strings.Repeat("a", 501),
	} {
		_, err := svc.CreatePost(ctx, "user-1", content, nil)
		tagged, ok := domain.AsError(err)
		if !ok || tagged.Kind != domain.KindValidation {
			t.Fatalf("expected validation error for %s content, got %v", name, err)
		}
	}

	if _, err := svc.CreatePost(ctx, "user-1", strings.Repeat("a", 500), nil); err != nil {
		t.Fatalf("expected content at the upper bound to pass, got %v", err)
	}
}

func TestPostService_GetPostReadThrough(t *testing.T) {
	svc, repo, cache, _ := newPostFixture(t)

	ctx := context.Background()
	created, err := svc.CreatePost(ctx, "user-1", "hello world", nil)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	repo.getCalls = 0

	first, err := svc.GetPost(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected miss to hit the store once, got %d calls", repo.getCalls)
	}

	second, err := svc.GetPost(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected second read from cache, store calls %d", repo.getCalls)
	}

	// A repeat read inside the TTL returns an identical serialized entity.
	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("expected identical reads, got %s vs %s", firstJSON, secondJSON)
	}

	if _, ok := cache.posts[created.ID]; !ok {
		t.Fatal("expected post to be cached after miss")
	}
}

func TestPostService_GetPostNotFound(t *testing.T) {
	svc, _, _, _ := newPostFixture(t)

	_, err := svc.GetPost(context.Background(), "missing")
	tagged, ok := domain.AsError(err)
	if !ok || tagged.Kind != domain.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPostService_ListPostsReadThrough(t *testing.T) {
	svc, repo, cache, _ := newPostFixture(t)

	ctx := context.Background()
	for i := 0; i < 15; i++ {
		if _, err := svc.CreatePost(ctx, "user-1", "post content", nil); err != nil {
			t.Fatalf("CreatePost returned error: %v", err)
		}
	}

	page, err := svc.ListPosts(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if len(page.Posts) != 10 || page.CurrentPage != 1 || page.TotalPages != 2 || page.TotalPosts != 15 {
		t.Fatalf("unexpected page: len=%d %+v", len(page.Posts), page)
	}

	if _, ok := cache.pages[pageCacheKey{1, 10}]; !ok {
		t.Fatal("expected page to be cached after miss")
	}

	// A second read is served from cache even if the store breaks.
	repo.listErr = context.DeadlineExceeded
	cached, err := svc.ListPosts(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if cached.TotalPosts != 15 {
		t.Fatalf("unexpected cached page: %+v", cached)
	}
}

func TestPostService_ListPostsOutOfRange(t *testing.T) {
	svc, _, _, _ := newPostFixture(t)

	ctx := context.Background()
	if _, err := svc.CreatePost(ctx, "user-1", "only post", nil); err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	page, err := svc.ListPosts(ctx, 99, 10)
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if len(page.Posts) != 0 || page.CurrentPage != 99 {
		t.Fatalf("expected empty out-of-range page, got %+v", page)
	}
}

func TestPostService_CreateInvalidatesPages(t *testing.T) {
	svc, _, cache, _ := newPostFixture(t)

	ctx := context.Background()
	if _, err := svc.CreatePost(ctx, "user-1", "first", nil); err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	if _, err := svc.ListPosts(ctx, 1, 10); err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if len(cache.pages) != 1 {
		t.Fatalf("expected 1 cached page, got %d", len(cache.pages))
	}

	if _, err := svc.CreatePost(ctx, "user-1", "second", nil); err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if len(cache.pages) != 0 {
		t.Fatal("expected page cache to be invalidated by the write")
	}

	// The next read reflects the new post.
	page, err := svc.ListPosts(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if page.TotalPosts != 2 || page.Posts[0].Content != "second" {
		t.Fatalf("expected fresh listing after invalidation, got %+v", page)
	}
}

func TestPostService_DeleteOwnership(t *testing.T) {
	svc, repo, _, publisher := newPostFixture(t)

	ctx := context.Background()
	post, err := svc.CreatePost(ctx, "user-1", "mine", nil)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	err = svc.DeletePost(ctx, "user-2", post.ID)
	tagged, ok := domain.AsError(err)
	if !ok || tagged.Kind != domain.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}

	// The rejected delete mutated nothing.
	if _, err := repo.GetByID(ctx, post.ID); err != nil {
		t.Fatalf("expected post to survive foreign delete: %v", err)
	}
	if len(publisher.deleted) != 0 {
		t.Fatal("expected no deleted event for rejected delete")
	}

	if err := svc.DeletePost(ctx, "user-1", post.ID); err != nil {
		t.Fatalf("DeletePost returned error: %v", err)
	}
	if len(publisher.deleted) != 1 {
		t.Fatalf("expected 1 deleted event, got %d", len(publisher.deleted))
	}
}

func TestPostService_DeleteInvalidatesItemEntry(t *testing.T) {
	svc, _, cache, _ := newPostFixture(t)

	ctx := context.Background()
	post, err := svc.CreatePost(ctx, "user-1", "ephemeral", nil)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	if _, err := svc.GetPost(ctx, post.ID); err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if _, ok := cache.posts[post.ID]; !ok {
		t.Fatal("expected post cached before delete")
	}

	if err := svc.DeletePost(ctx, "user-1", post.ID); err != nil {
		t.Fatalf("DeletePost returned error: %v", err)
	}
	if _, ok := cache.posts[post.ID]; ok {
		t.Fatal("expected post entry invalidated by delete")
	}

	_, err = svc.GetPost(ctx, post.ID)
	tagged, ok := domain.AsError(err)
	if !ok || tagged.Kind != domain.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPostService_DeleteNotFound(t *testing.T) {
	svc, _, _, _ := newPostFixture(t)

	err := svc.DeletePost(context.Background(), "user-1", "missing")
	tagged, ok := domain.AsError(err)
	if !ok || tagged.Kind != domain.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPostService_WriteSucceedsWhenInvalidationFails(t *testing.T) {
	svc, _, cache, _ := newPostFixture(t)

	ctx := context.Background()
	cache.delErr = context.DeadlineExceeded
	cache.pagesErr = context.DeadlineExceeded

	// Invalidation failures are swallowed; TTLs bound the staleness.
	if _, err := svc.CreatePost(ctx, "user-1", "resilient", nil); err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
}

func TestPostService_ReadFallsBackWhenCacheDown(t *testing.T) {
	svc, _, cache, _ := newPostFixture(t)

	ctx := context.Background()
	post, err := svc.CreatePost(ctx, "user-1", "durable", nil)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	cache.getErr = context.DeadlineExceeded
	cache.setErr = context.DeadlineExceeded

	got, err := svc.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if got.ID != post.ID {
		t.Fatalf("unexpected post: %+v", got)
	}

	page, err := svc.ListPosts(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if page.TotalPosts != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}
