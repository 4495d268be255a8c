package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *repository) AppendTransaction(ctx context.Context, params store.AppendTransactionParams) (*models.Transaction, error) {
	transactionId := params.TransactionId
	if transactionId == "" {
		transactionId = uuid.New().String()
	}
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.q.Exec(ctx, queryInsertTransaction,
		transactionId,
		params.AccountId,
		string(params.Kind),
		formatAmount(params.Amount),
		formatAmount(params.BalanceBefore),
		formatAmount(params.BalanceAfter),
		nullable(params.ReferenceId),
		nullable(params.ReferenceKind),
		models.StatusCompleted,
		createdAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}

	return &models.Transaction{
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
	}, nil
}

func (r *repository) GetTransactionHistory(ctx context.Context, accountId string, limit, offset int) ([]models.Transaction, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, queryCountTransactions, accountId).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", translateError(err))
	}

	rows, err := r.q.Query(ctx, queryGetTransactionHistory, accountId, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transaction history: %w", translateError(err))
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", translateError(err))
	}
	return transactions, total, nil
}

func (r *repository) HasTransactionSince(ctx context.Context, accountId string, kind models.TransactionKind, since time.Time) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, queryHasTransactionSince, accountId, string(kind), since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s transactions: %w", kind, translateError(err))
	}
	return exists, nil
}

func (r *repository) GetStats(ctx context.Context) (*models.LedgerStats, error) {
	var totalStr string
	if err := r.q.QueryRow(ctx, queryTotalInCirculation).Scan(&totalStr); err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", translateError(err))
	}
	total, err := parseAmount("total in circulation", totalStr)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.Query(ctx, queryStatsByKind)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", translateError(err))
	}
	var perKind []models.KindStats
	for rows.Next() {
		var ks models.KindStats
		var kind, sumStr string
		if err := rows.Scan(&kind, &ks.Count, &sumStr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transaction stats: %w", err)
		}
		ks.Kind = models.TransactionKind(kind)
		if ks.Total, err = parseAmount("kind total", sumStr); err != nil {
			rows.Close()
			return nil, err
		}
		perKind = append(perKind, ks)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", translateError(err))
	}

	var withTokens int64
	if err := r.q.QueryRow(ctx, queryAccountsWithTokens).Scan(&withTokens); err != nil {
		return nil, fmt.Errorf("failed to count funded accounts: %w", translateError(err))
	}

	return &models.LedgerStats{
		TotalInCirculation: total,
		PerKind:            perKind,
		AccountsWithTokens: withTokens,
	}, nil
}

func (r *repository) ReconcileBalance(ctx context.Context, accountId string) (*models.Reconciliation, error) {
	var storedStr, calculatedStr string
	err := r.q.QueryRow(ctx, queryReconcileBalance, accountId).Scan(&storedStr, &calculatedStr)
	if errors.Is(err, pgx.ErrNoRows) {
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

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	var kind, amountStr, beforeStr, afterStr string
	var refId, refKind *string

	err := row.Scan(&tx.Id, &tx.AccountId, &kind, &amountStr, &beforeStr, &afterStr,
		&refId, &refKind, &tx.Status, &tx.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Kind = models.TransactionKind(kind)
	tx.ReferenceId = deref(refId)
	tx.ReferenceKind = deref(refKind)

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
