package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgExecutor abstracts pgxpool.Pool, pgx.Tx, and mocks for testing.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the PostgreSQL-backed repositories sharing one pool.
type Repositories struct {
	Users  *UserRepository
	Posts  *PostRepository
	Tokens *TokenRepository
}

// NewRepositories wires all repositories against the supplied pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:  NewUserRepository(pool),
		Posts:  NewPostRepository(pool),
		Tokens: NewTokenRepository(pool),
	}
}
