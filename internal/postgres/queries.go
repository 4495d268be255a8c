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

package postgres

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, name, email, created_at) VALUES ($1, $2, $3, $4)`

	queryGetAccounts = `
		SELECT id, name, email, created_at
		FROM accounts
		ORDER BY created_at, id`

	queryGetAccountById = `
		SELECT id, name, email, created_at
		FROM accounts
		WHERE id = $1`

	queryGetAccountByEmail = `
		SELECT id, name, email, created_at
		FROM accounts
		WHERE email = $1`

	// Balance queries
	queryInsertBalance = `
		INSERT INTO balances (account_id, amount, version, last_updated)
		VALUES ($1, 0, 1, $2)`

	queryGetBalance = `
		SELECT account_id, amount::text, last_transaction_id, version, last_updated
		FROM balances
		WHERE account_id = $1`

	queryLockBalance = `
		SELECT account_id FROM balances WHERE account_id = $1 FOR UPDATE`

	queryUpdateBalance = `
		UPDATE balances
		SET amount = $1::text::numeric, last_transaction_id = $2, version = version + 1, last_updated = $3
		WHERE account_id = $4 AND version = $5`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, account_id, kind, amount, balance_before, balance_after,
			reference_id, reference_kind, status, created_at
		) VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6::text::numeric, $7, $8, $9, $10)`

	queryGetTransactionHistory = `
		SELECT id, account_id, kind, amount::text, balance_before::text, balance_after::text,
		       reference_id, reference_kind, status, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3`

	queryCountTransactions = `
		SELECT COUNT(*) FROM transactions WHERE account_id = $1`

	queryHasTransactionSince = `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE account_id = $1 AND kind = $2 AND status = 'completed' AND created_at >= $3
		)`

	queryTotalInCirculation = `
		SELECT COALESCE(SUM(amount), 0)::numeric(20,2)::text FROM balances`

	queryStatsByKind = `
		SELECT kind, COUNT(*), COALESCE(SUM(amount), 0)::numeric(20,2)::text
		FROM transactions
		WHERE status = 'completed'
		GROUP BY kind
		ORDER BY kind`

	queryAccountsWithTokens = `
		SELECT COUNT(*) FROM balances WHERE amount > 0`

	// One statement so the stored amount and the log sum come from the same snapshot
	queryReconcileBalance = `
		SELECT b.amount::text,
		       COALESCE((
		           SELECT SUM(t.amount) FROM transactions t
		           WHERE t.account_id = b.account_id AND t.status = 'completed'), 0)::numeric(20,2)::text as calculated_balance
		FROM balances b
		WHERE b.account_id = $1`

	// Post queries
	queryInsertPost = `
		INSERT INTO posts (id, author_id, content, is_reshare, original_post_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	queryGetPost = `
		SELECT id, author_id, content, is_edited, is_deleted, view_count, is_reshare,
		       original_post_id, created_at, updated_at
		FROM posts
		WHERE id = $1`

	queryUpdatePost = `
		UPDATE posts SET content = $1, is_edited = TRUE, updated_at = $2
		WHERE id = $3 AND NOT is_deleted`

	querySoftDeletePost = `
		UPDATE posts SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND NOT is_deleted`

	queryIncrementViewCount = `
		UPDATE posts SET view_count = view_count + 1
		WHERE id = $1 AND NOT is_deleted`

	queryListPosts = `
		SELECT id, author_id, content, is_edited, is_deleted, view_count, is_reshare,
		       original_post_id, created_at, updated_at
		FROM posts
		WHERE NOT is_deleted
		ORDER BY created_at DESC, seq DESC
		LIMIT $1 OFFSET $2`

	queryCountPosts = `
		SELECT COUNT(*) FROM posts WHERE NOT is_deleted`

	queryListPostsByAuthor = `
		SELECT id, author_id, content, is_edited, is_deleted, view_count, is_reshare,
		       original_post_id, created_at, updated_at
		FROM posts
		WHERE author_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3`

	queryCountPostsByAuthor = `
		SELECT COUNT(*) FROM posts WHERE author_id = $1 AND NOT is_deleted`

	// Media queries
	queryInsertMedia = `
		INSERT INTO post_media (id, post_id, media_type, media_url, thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	queryGetMediaForPost = `
		SELECT id, post_id, media_type, media_url, thumbnail_url, created_at
		FROM post_media
		WHERE post_id = $1
		ORDER BY created_at, seq`

	// Like queries
	queryInsertLike = `
		INSERT INTO likes (id, post_id, account_id, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	queryDeleteLike = `
		DELETE FROM likes WHERE post_id = $1 AND account_id = $2`

	queryGetLikesForPost = `
		SELECT id, post_id, account_id, transaction_id, created_at
		FROM likes
		WHERE post_id = $1
		ORDER BY created_at DESC, seq DESC`

	queryHasLiked = `
		SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND account_id = $2)`
)

const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS balances (
		account_id TEXT PRIMARY KEY REFERENCES accounts(id),
		amount NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
		last_transaction_id TEXT,
		version BIGINT NOT NULL DEFAULT 1,
		last_updated TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL REFERENCES accounts(id),
		content TEXT NOT NULL,
		is_edited BOOLEAN NOT NULL DEFAULT FALSE,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		view_count BIGINT NOT NULL DEFAULT 0,
		is_reshare BOOLEAN NOT NULL DEFAULT FALSE,
		original_post_id TEXT REFERENCES posts(id),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (is_reshare = (original_post_id IS NOT NULL))
	);

	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

	CREATE TABLE IF NOT EXISTS post_media (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		media_type TEXT NOT NULL CHECK (media_type IN ('image', 'video')),
		media_url TEXT NOT NULL,
		thumbnail_url TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_post_media_post ON post_media(post_id);

	CREATE TABLE IF NOT EXISTS transactions (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		kind TEXT NOT NULL CHECK (kind IN (
			'post_creation', 'like_cost', 'like_reward', 'reshare',
			'reshare_reward', 'daily_login', 'purchase')),
		amount NUMERIC(14,2) NOT NULL,
		balance_before NUMERIC(14,2) NOT NULL,
		balance_after NUMERIC(14,2) NOT NULL,
		reference_id TEXT,
		reference_kind TEXT,
		status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('completed', 'failed')),
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account_created ON transactions(account_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_kind ON transactions(account_id, kind, created_at);

	CREATE TABLE IF NOT EXISTS likes (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		account_id TEXT NOT NULL REFERENCES accounts(id),
		transaction_id TEXT REFERENCES transactions(id),
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (post_id, account_id)
	);
`
