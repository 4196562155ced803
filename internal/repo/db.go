// Package repo stores users and reviews in Postgres.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"Plant3D/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       SERIAL PRIMARY KEY,
	login    TEXT NOT NULL UNIQUE,
	email    TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reviews (
	id         UUID PRIMARY KEY,
	owner_id   INTEGER NOT NULL REFERENCES users(id),
	source     TEXT NOT NULL,
	params     JSONB NOT NULL,
	overrides  JSONB NOT NULL,
	baseline   JSONB NOT NULL,
	warnings   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_owner_idx ON reviews (owner_id);
`

// connString requires TLS unless the URL already chooses an sslmode.
func connString(url string) string {
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		if strings.Contains(url, "?") {
			return url + "&sslmode=require"
		}
		return url + "?sslmode=require"
	}
	return url + " sslmode=require"
}

// Open connects, sizes the pool and pings the server.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}
	return db, nil
}

// Migrate creates the tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
