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

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, name, email, created_at) VALUES (?, ?, ?, ?)`

	queryGetAccounts = `
		SELECT id, name, email, created_at
		FROM accounts
		ORDER BY created_at, id`

	queryGetAccountById = `
		SELECT id, name, email, created_at
		FROM accounts
		WHERE id = ?`

	queryGetAccountByEmail = `
		SELECT id, name, email, created_at
		FROM accounts
		WHERE email = ?`

	// Balance queries
	queryInsertBalance = `
		INSERT INTO balances (account_id, amount, version, last_updated)
		VALUES (?, '0.00', 1, ?)`

	queryGetBalance = `
		SELECT account_id, amount, last_transaction_id, version, last_updated
		FROM balances
		WHERE account_id = ?`

	queryUpdateBalance = `
		UPDATE balances
		SET amount = ?, last_transaction_id = ?, version = version + 1, last_updated = ?
		WHERE account_id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, account_id, kind, amount, balance_before, balance_after,
			reference_id, reference_kind, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactionHistory = `
		SELECT id, account_id, kind, amount, balance_before, balance_after,
		       reference_id, reference_kind, status, created_at
		FROM transactions
		WHERE account_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryCountTransactions = `
		SELECT COUNT(*) FROM transactions WHERE account_id = ?`

	queryHasTransactionSince = `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE account_id = ? AND kind = ? AND status = 'completed' AND created_at >= ?
		)`

	queryTotalInCirculation = `
		SELECT printf('%.2f', COALESCE(SUM(amount), 0)) FROM balances`

	queryStatsByKind = `
		SELECT kind, COUNT(*), printf('%.2f', COALESCE(SUM(amount), 0))
		FROM transactions
		WHERE status = 'completed'
		GROUP BY kind
		ORDER BY kind`

	queryAccountsWithTokens = `
		SELECT COUNT(*) FROM balances WHERE CAST(amount AS REAL) > 0`

	// One statement so the stored amount and the log sum come from the same snapshot
	queryReconcileBalance = `
		SELECT b.amount,
		       printf('%.2f', COALESCE((
		           SELECT SUM(t.amount) FROM transactions t
		           WHERE t.account_id = b.account_id AND t.status = 'completed'), 0)) as calculated_balance
		FROM balances b
		WHERE b.account_id = ?`

	// Post queries
	queryInsertPost = `
		INSERT INTO posts (id, author_id, content, is_reshare, original_post_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetPost = `
		SELECT id, author_id, content, is_edited, is_deleted, view_count, is_reshare,
		       original_post_id, created_at, updated_at
		FROM posts
		WHERE id = ?`

	queryUpdatePost = `
		UPDATE posts SET content = ?, is_edited = 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0`

	querySoftDeletePost = `
		UPDATE posts SET is_deleted = 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0`

	queryIncrementViewCount = `
		UPDATE posts SET view_count = view_count + 1
		WHERE id = ? AND is_deleted = 0`

	queryListPosts = `
		SELECT id, author_id, content, is_edited, is_deleted, view_count, is_reshare,
		       original_post_id, created_at, updated_at
		FROM posts
		WHERE is_deleted = 0
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryCountPosts = `
		SELECT COUNT(*) FROM posts WHERE is_deleted = 0`

	queryListPostsByAuthor = `
		SELECT id, author_id, content, is_edited, is_deleted, view_count, is_reshare,
		       original_post_id, created_at, updated_at
		FROM posts
		WHERE author_id = ? AND is_deleted = 0
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryCountPostsByAuthor = `
		SELECT COUNT(*) FROM posts WHERE author_id = ? AND is_deleted = 0`

	// Media queries
	queryInsertMedia = `
		INSERT INTO post_media (id, post_id, media_type, media_url, thumbnail_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetMediaForPost = `
		SELECT id, post_id, media_type, media_url, thumbnail_url, created_at
		FROM post_media
		WHERE post_id = ?
		ORDER BY created_at, rowid`

	// Like queries
	queryInsertLike = `
		INSERT INTO likes (id, post_id, account_id, transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?)`

	queryDeleteLike = `
		DELETE FROM likes WHERE post_id = ? AND account_id = ?`

	queryGetLikesForPost = `
		SELECT id, post_id, account_id, transaction_id, created_at
		FROM likes
		WHERE post_id = ?
		ORDER BY created_at DESC, rowid DESC`

	queryHasLiked = `
		SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = ? AND account_id = ?)`
)
