// Package store is the sole source of truth for persistent state. It
// wraps a pgxpool.Pool; every method either runs a single parameterized
// query or wraps a small number of statements in a transaction when a
// counter update must be atomic with its source-of-truth row. There is
// no ORM here: every query is hand-written SQL, matching the explicit
// JOINs and explicit UPDATE statements called for over ORM cascades and
// trigger-maintained counters.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the sole source of truth for persistent state. It wraps a
// pgxpool.Pool; every method either runs a single parameterized query or
// wraps a small number of statements in a transaction when a counter
// update must be atomic with its source-of-truth row.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error. The deferred rollback also runs if fn panics; the
// panic itself is not recovered.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
