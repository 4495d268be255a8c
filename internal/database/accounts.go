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
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"
)

// CreateAccount inserts the account row and its zero balance
func (r *repository) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	now := time.Now().UTC()

	if _, err := r.q.ExecContext(ctx, queryInsertAccount, params.AccountId, params.Name, params.Email, now); err != nil {
		err = translateError(err)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("account with email %s already exists: %w", params.Email, store.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, queryInsertBalance, params.AccountId, now); err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", translateError(err))
	}

	return &models.Account{
		Id:        params.AccountId,
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: now,
	}, nil
}

func (r *repository) GetAccount(ctx context.Context, accountId string) (*models.Account, error) {
	return r.getAccount(ctx, queryGetAccountById, accountId)
}

func (r *repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getAccount(ctx, queryGetAccountByEmail, email)
}

func (r *repository) getAccount(ctx context.Context, query, arg string) (*models.Account, error) {
	var account models.Account
	err := r.q.QueryRowContext(ctx, query, arg).Scan(&account.Id, &account.Name, &account.Email, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", arg, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", translateError(err))
	}
	return &account, nil
}

func (r *repository) GetAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.q.QueryContext(ctx, queryGetAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", translateError(err))
	}
	defer closeRows(rows)

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.Id, &account.Name, &account.Email, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}
