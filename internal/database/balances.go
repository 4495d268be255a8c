package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"go.uber.org/zap"
)

// GetBalance returns the current balance row for an account (O(1) lookup)
func (r *repository) GetBalance(ctx context.Context, accountId string) (*models.Balance, error) {
	zap.L().Debug("Getting balance", zap.String("account_id", accountId))

	var balance models.Balance
	var amountStr string
	var lastTxId sql.NullString
	err := r.q.QueryRowContext(ctx, queryGetBalance, accountId).
		Scan(&balance.AccountId, &amountStr, &lastTxId, &balance.Version, &balance.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("balance for account %s: %w", accountId, store.ErrNotFound)
	}
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("account_id", accountId), zap.Error(err))
		return nil, fmt.Errorf("failed to get balance: %w", translateError(err))
	}

	balance.Amount, err = parseAmount("balance", amountStr)
	if err != nil {
		return nil, err
	}
	balance.LastTransactionId = lastTxId.String

	return &balance, nil
}

// LockBalances is a no-op for SQLite: the write lock is already held from
// BEGIN IMMEDIATE until commit, which serialises every action.
func (r *repository) LockBalances(_ context.Context, _ ...string) error {
	return nil
}

// AdjustBalance applies a delta with optimistic locking on the row version
func (r *repository) AdjustBalance(ctx context.Context, params store.AdjustBalanceParams) (*models.Balance, error) {
	current, err := r.GetBalance(ctx, params.AccountId)
	if err != nil {
		return nil, err
	}
	if current.Version != params.ExpectedVersion {
		return nil, fmt.Errorf("balance version moved from %d to %d - %w",
			params.ExpectedVersion, current.Version, store.ErrConcurrentModification)
	}

	newAmount := current.Amount.Add(params.Delta).Round(2)
	if newAmount.IsNegative() {
		return nil, fmt.Errorf("balance %s cannot absorb %s: %w",
			current.Amount.StringFixed(2), params.Delta.StringFixed(2), store.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx, queryUpdateBalance,
		formatAmount(newAmount), nullString(params.TransactionId), now, params.AccountId, params.ExpectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", translateError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	zap.L().Debug("Balance adjusted",
		zap.String("account_id", params.AccountId),
		zap.String("old_balance", current.Amount.StringFixed(2)),
		zap.String("new_balance", newAmount.StringFixed(2)))

	return &models.Balance{
		AccountId:         params.AccountId,
		Amount:            newAmount,
		LastTransactionId: params.TransactionId,
		Version:           params.ExpectedVersion + 1,
		LastUpdated:       now,
	}, nil
}
