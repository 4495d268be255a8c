package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/jackc/pgx/v5"
)

// CreateAccount inserts the account row and its zero balance
func (r *repository) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	now := time.Now().UTC()

	if _, err := r.q.Exec(ctx, queryInsertAccount, params.AccountId, params.Name, params.Email, now); err != nil {
		err = translateError(err)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("account with email %s already exists: %w", params.Email, store.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if _, err := r.q.Exec(ctx, queryInsertBalance, params.AccountId, now); err != nil {
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
	err := r.q.QueryRow(ctx, query, arg).Scan(&account.Id, &account.Name, &account.Email, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", arg, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", translateError(err))
	}
	return &account, nil
}

func (r *repository) GetAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.q.Query(ctx, queryGetAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", translateError(err))
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.Id, &account.Name, &account.Email, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", translateError(err))
	}
	return accounts, nil
}
