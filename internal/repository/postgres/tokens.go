package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	"github.com/AyushPithale/social-platform-gateway/internal/repository"
)

// TokenRepository implements port.TokenRepository using PostgreSQL.
// Refresh handles live in durable storage, not the cache store: losing them
// would force every client to re-authenticate.
type TokenRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	repo := &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// CreateRefreshToken inserts a new refresh handle record.
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	stmt, args, err := r.builder.Insert("refresh_tokens").
		Columns("id", "user_id", "token_hash", "created_at", "expires_at", "used_at").
		Values(token.ID, token.UserID, token.TokenHash, token.CreatedAt, token.ExpiresAt, token.UsedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetRefreshTokenByHash retrieves a refresh handle by its hashed value.
func (r *TokenRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "token_hash", "created_at", "expires_at", "used_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		token  domain.RefreshToken
		usedAt sql.NullTime
	)

	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.CreatedAt,
		&token.ExpiresAt,
		&usedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	if usedAt.Valid {
		used := usedAt.Time
		token.UsedAt = &used
	}

	return &token, nil
}

// MarkRefreshTokenUsed records the redemption moment for a handle. Only an
// unused handle transitions; a second redemption attempt matches zero rows
// and reports ErrNotFound, which is what makes handles single-use under
// concurrent redemption.
func (r *TokenRepository) MarkRefreshTokenUsed(ctx context.Context, id string, usedAt time.Time) error {
	stmt, args, err := r.builder.
		Update("refresh_tokens").
		Set("used_at", usedAt).
		Where(squirrel.Eq{"id": id}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark refresh token used sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark refresh token used: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpired removes handles whose expiry predates the cutoff.
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	stmt, args, err := r.builder.
		Delete("refresh_tokens").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired tokens sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
