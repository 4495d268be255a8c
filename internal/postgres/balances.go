package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func (r *repository) GetBalance(ctx context.Context, accountId string) (*models.Balance, error) {
	var balance models.Balance
	var amountStr string
	var lastTxId *string
	err := r.q.QueryRow(ctx, queryGetBalance, accountId).
		Scan(&balance.AccountId, &amountStr, &lastTxId, &balance.Version, &balance.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("balance for account %s: %w", accountId, store.ErrNotFound)
	}
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("account_id", accountId), zap.Error(err))
		return nil, fmt.Errorf("failed to get balance: %w", translateError(err))
	}

	if balance.Amount, err = parseAmount("balance", amountStr); err != nil {
		return nil, err
	}
	balance.LastTransactionId = deref(lastTxId)
	return &balance, nil
}

// LockBalances takes FOR UPDATE row locks in ascending account id order so
// two actions touching the same pair of accounts cannot deadlock. Accounts
// without a balance row are skipped.
func (r *repository) LockBalances(ctx context.Context, accountIds ...string) error {
	ids := slices.Clone(accountIds)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		var locked string
		err := r.q.QueryRow(ctx, queryLockBalance, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to lock balance %s: %w", id, translateError(err))
		}
	}
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
	tag, err := r.q.Exec(ctx, queryUpdateBalance,
		formatAmount(newAmount), nullable(params.TransactionId), now, params.AccountId, params.ExpectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	return &models.Balance{
		AccountId:         params.AccountId,
		Amount:            newAmount,
		LastTransactionId: params.TransactionId,
		Version:           params.ExpectedVersion + 1,
		LastUpdated:       now,
	}, nil
}
