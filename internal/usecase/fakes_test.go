package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == identifier || user.Email == identifier {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]domain.RefreshToken)}
}

func (f *fakeTokenRepo) CreateRefreshToken(_ context.Context, token domain.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenRepo) GetRefreshTokenByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.TokenHash == hash {
			copied := token
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokenRepo) MarkRefreshTokenUsed(_ context.Context, id string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[id]
	if !ok || token.UsedAt != nil {
		return repository.ErrNotFound
	}
	token.UsedAt = &usedAt
	f.tokens[id] = token
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, token := range f.tokens {
		if token.ExpiresAt.Before(before) {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakePostRepo struct {
	mu       sync.Mutex
	posts    map[string]domain.Post
	order    []string
	getCalls int
	listErr  error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]domain.Post)}
}

func (f *fakePostRepo) Create(_ context.Context, post domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[post.ID] = post
	// Newest first.
	f.order = append([]string{post.ID}, f.order...)
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	post, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := post
	return &copied, nil
}

func (f *fakePostRepo) List(_ context.Context, offset, limit int) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.order) {
		return []domain.Post{}, nil
	}
	end := offset + limit
	if end > len(f.order) {
		end = len(f.order)
	}
	result := make([]domain.Post, 0, end-offset)
	for _, id := range f.order[offset:end] {
		result = append(result, f.posts[id])
	}
	return result, nil
}

func (f *fakePostRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.posts)), nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.posts, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type pageCacheKey struct {
	page, pageSize int
}

type fakePostCache struct {
	mu       sync.Mutex
	posts    map[string]domain.Post
	pages    map[pageCacheKey]domain.PostPage
	getErr   error
	setErr   error
	delErr   error
	pagesErr error
}

func newFakePostCache() *fakePostCache {
	return &fakePostCache{
		posts: make(map[string]domain.Post),
		pages: make(map[pageCacheKey]domain.PostPage),
	}
}

func (f *fakePostCache) GetPage(_ context.Context, page, pageSize int) (*domain.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	cached, ok := f.pages[pageCacheKey{page, pageSize}]
	if !ok {
		return nil, nil
	}
	copied := cached
	return &copied, nil
}

func (f *fakePostCache) SetPage(_ context.Context, page, pageSize int, value *domain.PostPage, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.pages[pageCacheKey{page, pageSize}] = *value
	return nil
}

func (f *fakePostCache) GetPost(_ context.Context, id string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	cached, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	copied := cached
	return &copied, nil
}

func (f *fakePostCache) SetPost(_ context.Context, id string, value *domain.Post, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.posts[id] = *value
	return nil
}

func (f *fakePostCache) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostCache) DeleteAllPages(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pagesErr != nil {
		return 0, f.pagesErr
	}
	dropped := int64(len(f.pages))
	f.pages = make(map[pageCacheKey]domain.PostPage)
	return dropped, nil
}

type fakePublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	created    []domain.PostCreatedEvent
	deleted    []domain.PostDeletedEvent
}

func (f *fakePublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, event)
	return nil
}

func (f *fakePublisher) PublishPostCreated(_ context.Context, event domain.PostCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, event)
	return nil
}

func (f *fakePublisher) PublishPostDeleted(_ context.Context, event domain.PostDeletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, event)
	return nil
}
