// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package store persists Kinoscope's users, movie catalog, and ratings in
// an embedded DuckDB database. It is the durable side of the system; the
// recommendation core holds derived in-memory state fed from here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/logging"
)

// Store wraps the database handle. One Store is shared across the
// application; database/sql handles connection pooling underneath.
type Store struct {
	db *sql.DB
}

// Open connects to the DuckDB database at cfg.Path, verifies the
// connection, and applies the schema. The caller owns Close.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	dsn := cfg.Path
	if cfg.Path != ":memory:" {
		dsn = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s", cfg.Path, threads, cfg.MaxMemory)
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(threads)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.Info().Str("component", "store").Str("path", cfg.Path).Msg("database ready")
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is alive, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_users_id START 1`,
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT PRIMARY KEY DEFAULT nextval('seq_users_id'),
			email         VARCHAR NOT NULL UNIQUE,
			name          VARCHAR NOT NULL,
			password_hash VARCHAR NOT NULL,
			created_at    TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id        BIGINT PRIMARY KEY,
			title     VARCHAR NOT NULL,
			genres    VARCHAR NOT NULL DEFAULT '',
			keywords  VARCHAR NOT NULL DEFAULT '',
			cast_list VARCHAR NOT NULL DEFAULT '',
			directors VARCHAR NOT NULL DEFAULT '',
			overview  VARCHAR NOT NULL DEFAULT '',
			year      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id  BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			rating   DOUBLE NOT NULL,
			rated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, movie_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}

// joinList and splitList map []string metadata onto a single VARCHAR
// column. Values never contain the separator; they come from curated
// catalog imports.
func joinList(values []string) string {
	return strings.Join(values, "|")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
