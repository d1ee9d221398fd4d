package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	"github.com/AyushPithale/social-platform-gateway/internal/repository"
)

// PostRepository implements port.PostRepository using PostgreSQL.
type PostRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPostRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewPostRepository(exec pgExecutor) *PostRepository {
	repo := &PostRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new post row.
func (r *PostRepository) Create(ctx context.Context, post domain.Post) error {
	sql, args, err := r.builder.Insert("posts").
		Columns("id", "user_id", "content", "media_ids", "created_at").
		Values(post.ID, post.UserID, post.Content, post.MediaIDs, post.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert post sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by identifier.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "content", "media_ids", "created_at").
		From("posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select post sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Content,
		&post.MediaIDs,
		&post.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return &post, nil
}

// List returns posts ordered newest first.
func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if offset < 0 {
		offset = 0
	}

	stmt, args, err := r.builder.
		Select("id", "user_id", "content", "media_ids", "created_at").
		From("posts").
		OrderBy("created_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list posts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0, limit)
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Content,
			&post.MediaIDs,
			&post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// Count returns the total number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("posts").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count posts sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}

	return count, nil
}

// Delete removes a post row, reporting ErrNotFound when nothing matched.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete post sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.PostRepository = (*PostRepository)(nil)
