// Package postgres provides Postgres-backed persistence for users and
// exercises.
package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    username TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    description TEXT NOT NULL,
    duration INTEGER NOT NULL,
    date TEXT NOT NULL
);
`

// Store owns the shared connection pool. The pool is opened and the
// schema ensured exactly once, on first acquire; concurrent first
// calls are safe.
type Store struct {
	url string

	once sync.Once
	pool *pgxpool.Pool
	err  error
}

// NewStore prepares a Store for the given connection URL without
// connecting.
func NewStore(url string) *Store {
	return &Store{url: url}
}

// Acquire returns the shared pool, initialising it on first use.
func (s *Store) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	s.once.Do(func() {
		pool, err := pgxpool.New(ctx, s.url)
		if err != nil {
			s.err = err
			return
		}
		if _, err := pool.Exec(ctx, schema); err != nil {
			pool.Close()
			s.err = err
			return
		}
		s.pool = pool
	})
	return s.pool, s.err
}

// Close releases the pool if it was ever opened.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
