package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppendTransaction inserts one immutable ledger entry. There is no update or
// delete counterpart.
func (r *repository) AppendTransaction(ctx context.Context, params store.AppendTransactionParams) (*models.Transaction, error) {
	transactionId := params.TransactionId
	if transactionId == "" {
		transactionId = uuid.New().String()
	}
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, queryInsertTransaction,
		transactionId,
		params.AccountId,
		string(params.Kind),
		formatAmount(params.Amount),
		formatAmount(params.BalanceBefore),
		formatAmount(params.BalanceAfter),
		nullString(params.ReferenceId),
		nullString(params.ReferenceKind),
		models.StatusCompleted,
		createdAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}

	tx := &models.Transaction{
		Id:            transactionId,
		AccountId:     params.AccountId,
		Kind:          params.Kind,
		Amount:        params.Amount.Round(2),
		BalanceBefore: params.BalanceBefore.Round(2),
		BalanceAfter:  params.BalanceAfter.Round(2),
		ReferenceId:   params.ReferenceId,
		ReferenceKind: params.ReferenceKind,
		Status:        models.StatusCompleted,
		CreatedAt:     createdAt.UTC(),
	}

	zap.L().Debug("Transaction appended",
		zap.String("transaction_id", tx.Id),
		zap.String("account_id", tx.AccountId),
		zap.String("kind", string(tx.Kind)),
		zap.String("amount", tx.Amount.StringFixed(2)))

	return tx, nil
}

// GetTransactionHistory returns one page of an account's log, newest first,
// plus the account's total entry count
func (r *repository) GetTransactionHistory(ctx context.Context, accountId string, limit, offset int) ([]models.Transaction, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, queryCountTransactions, accountId).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", translateError(err))
	}

	rows, err := r.q.QueryContext(ctx, queryGetTransactionHistory, accountId, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transaction history: %w", translateError(err))
	}
	defer closeRows(rows)

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, total, nil
}

// HasTransactionSince reports whether a completed entry of the given kind
// exists for the account at or after since
func (r *repository) HasTransactionSince(ctx context.Context, accountId string, kind models.TransactionKind, since time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, queryHasTransactionSince, accountId, string(kind), since.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s transactions: %w", kind, translateError(err))
	}
	return exists, nil
}

// GetStats aggregates balances and the transaction log
func (r *repository) GetStats(ctx context.Context) (*models.LedgerStats, error) {
	var totalStr string
	if err := r.q.QueryRowContext(ctx, queryTotalInCirculation).Scan(&totalStr); err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", translateError(err))
	}
	total, err := parseAmount("total in circulation", totalStr)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, queryStatsByKind)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", translateError(err))
	}
	defer closeRows(rows)

	var perKind []models.KindStats
	for rows.Next() {
		var ks models.KindStats
		var kind, sumStr string
		if err := rows.Scan(&kind, &ks.Count, &sumStr); err != nil {
			return nil, fmt.Errorf("failed to scan transaction stats: %w", err)
		}
		ks.Kind = models.TransactionKind(kind)
		if ks.Total, err = parseAmount("kind total", sumStr); err != nil {
			return nil, err
		}
		perKind = append(perKind, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}

	var withTokens int64
	if err := r.q.QueryRowContext(ctx, queryAccountsWithTokens).Scan(&withTokens); err != nil {
		return nil, fmt.Errorf("failed to count funded accounts: %w", translateError(err))
	}

	return &models.LedgerStats{
		TotalInCirculation: total,
		PerKind:            perKind,
		AccountsWithTokens: withTokens,
	}, nil
}

// ReconcileBalance compares the stored balance with the sum of the account's log
func (r *repository) ReconcileBalance(ctx context.Context, accountId string) (*models.Reconciliation, error) {
	var storedStr, calculatedStr string
	err := r.q.QueryRowContext(ctx, queryReconcileBalance, accountId).Scan(&storedStr, &calculatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("balance for account %s: %w", accountId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to calculate balance from transactions: %w", translateError(err))
	}

	stored, err := parseAmount("balance", storedStr)
	if err != nil {
		return nil, err
	}
	calculated, err := parseAmount("calculated balance", calculatedStr)
	if err != nil {
		return nil, err
	}

	return &models.Reconciliation{
		AccountId:  accountId,
		Stored:     stored,
		Calculated: calculated,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var kind, amountStr, beforeStr, afterStr string
	var refId, refKind sql.NullString

	err := row.Scan(&tx.Id, &tx.AccountId, &kind, &amountStr, &beforeStr, &afterStr,
		&refId, &refKind, &tx.Status, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	tx.Kind = models.TransactionKind(kind)
	tx.ReferenceId = refId.String
	tx.ReferenceKind = refKind.String

	if tx.Amount, err = parseAmount("amount", amountStr); err != nil {
		return nil, err
	}
	if tx.BalanceBefore, err = parseAmount("balance before", beforeStr); err != nil {
		return nil, err
	}
	if tx.BalanceAfter, err = parseAmount("balance after", afterStr); err != nil {
		return nil, err
	}

	return &tx, nil
}
