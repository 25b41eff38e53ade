// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"olymatch/internal/config"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, cfg *config.PostgresConfig) (*DB, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
		cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxOpenConns
	poolConfig.MinConns = cfg.MaxIdleConns
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// RunMigrations creates the required database tables.
// Likes deliberately have no uniqueness constraint over (from, to, is_like):
// redelivered intents create duplicate rows, which is the documented
// pipeline behavior.
func (db *DB) RunMigrations(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			tg_id BIGINT UNIQUE NOT NULL,
			first_name TEXT,
			last_name TEXT,
			middle_name TEXT,
			phone TEXT,
			phone_verified BOOLEAN DEFAULT FALSE,
			age INTEGER,
			city TEXT,
			status INTEGER DEFAULT 0,
			goal INTEGER DEFAULT 0,
			who_interested INTEGER DEFAULT 0,
			date_of_birth TEXT,
			description TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_tg_id ON users(tg_id);

		CREATE TABLE IF NOT EXISTS olympiads (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			profile TEXT NOT NULL,
			level INTEGER DEFAULT 0,
			user_tg_id BIGINT NOT NULL REFERENCES users(tg_id) ON DELETE CASCADE,
			result INTEGER NOT NULL,
			year TEXT NOT NULL,
			is_approved BOOLEAN DEFAULT FALSE,
			is_displayed BOOLEAN DEFAULT FALSE
		);

		CREATE INDEX IF NOT EXISTS idx_olympiads_user ON olympiads(user_tg_id);

		CREATE TABLE IF NOT EXISTS likes (
			id BIGSERIAL PRIMARY KEY,
			from_user_tg_id BIGINT NOT NULL REFERENCES users(tg_id) ON DELETE CASCADE,
			to_user_tg_id BIGINT NOT NULL REFERENCES users(tg_id) ON DELETE CASCADE,
			text TEXT,
			is_like BOOLEAN NOT NULL,
			is_readed BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_likes_to_user ON likes(to_user_tg_id);
		CREATE INDEX IF NOT EXISTS idx_likes_from_user ON likes(from_user_tg_id);
	`

	_, err := db.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
