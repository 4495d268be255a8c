/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

type Service struct {
	*repository
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if cfg.BusyTimeout < 0 {
		return nil, fmt.Errorf("busy timeout cannot be negative, got %v", cfg.BusyTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))

	// _txlock=immediate takes the write lock at BEGIN, so concurrent actions
	// queue on busy_timeout instead of failing at their first write.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=on&_busy_timeout=%d&_txlock=immediate",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if cfg.Path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{repository: &repository{q: db}, db: db}
	if err := service.initSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after schema failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", translateError(err))
	}
	return nil
}

// WithTx runs fn against a repository bound to one SQLite transaction.
func (s *Service) WithTx(ctx context.Context, fn func(tx store.Store) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translateError(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				zap.L().Warn("Failed to roll back transaction", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(&repository{q: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}
	return nil
}

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	-- Create accounts table
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	);

	-- Create index on email for faster lookups
	CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);

	-- Create posts table; reshares point at the post they copy
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL REFERENCES accounts(id),
		content TEXT NOT NULL,
		is_edited BOOLEAN NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0,
		is_reshare BOOLEAN NOT NULL DEFAULT 0,
		original_post_id TEXT REFERENCES posts(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		CHECK ((is_reshare = 1) = (original_post_id IS NOT NULL))
	);

	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_original ON posts(original_post_id);

	-- Create media table (metadata only)
	CREATE TABLE IF NOT EXISTS post_media (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		media_type TEXT NOT NULL CHECK (media_type IN ('image', 'video')),
		media_url TEXT NOT NULL,
		thumbnail_url TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_post_media_post ON post_media(post_id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	if err := initLedgerSchema(ctx, s.db); err != nil {
		return fmt.Errorf("unable to initialize ledger schema: %w", err)
	}

	// Likes reference their paying transaction, so they come after the log
	likes := `
	CREATE TABLE IF NOT EXISTS likes (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		account_id TEXT NOT NULL REFERENCES accounts(id),
		transaction_id TEXT REFERENCES transactions(id),
		created_at TIMESTAMP NOT NULL
	);

	-- One like per (post, account); the ledger relies on this constraint
	CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_post_account ON likes(post_id, account_id);
	CREATE INDEX IF NOT EXISTS idx_likes_account ON likes(account_id);
	`

	_, err := s.db.ExecContext(ctx, likes)
	return err
}
