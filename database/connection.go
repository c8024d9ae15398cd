package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx connection pool handed to repositories.
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a connection pool against the given URL and
// verifies it with a bounded ping.
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// All sessions run in UTC; round boundaries and the daily
	// redemption limit depend on it.
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	// Purchases hold short row locks only, so a modest pool suffices.
	config.MaxConns = 10
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases the pool and all its connections.
func (db *DB) Close() {
	db.Pool.Close()
}
