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
)

// initLedgerSchema creates the balance store and the transaction log.
// Amounts are stored as fixed two-decimal text so they round-trip exactly.
func initLedgerSchema(ctx context.Context, q querier) error {
	schema := `
	-- Balances Table (Current State - Hot Data)
	CREATE TABLE IF NOT EXISTS balances (
		account_id TEXT PRIMARY KEY REFERENCES accounts(id),
		amount TEXT NOT NULL DEFAULT '0.00',
		last_transaction_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		last_updated TIMESTAMP NOT NULL
	);

	-- Transactions Table (Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		kind TEXT NOT NULL CHECK (kind IN (
			'post_creation', 'like_cost', 'like_reward', 'reshare',
			'reshare_reward', 'daily_login', 'purchase')),
		amount TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		reference_id TEXT,
		reference_kind TEXT,
		status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('completed', 'failed')),
		created_at TIMESTAMP NOT NULL
	);

	-- Performance Indexes for Transactions
	CREATE INDEX IF NOT EXISTS idx_transactions_account_created ON transactions(account_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_kind ON transactions(account_id, kind, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(reference_id);
	`

	_, err := q.ExecContext(ctx, schema)
	return err
}
