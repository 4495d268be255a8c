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

package api

import (
	"context"
	"fmt"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"go.uber.org/zap"
)

// GetBalance returns the current balance of an account
func (s *LedgerService) GetBalance(ctx context.Context, accountId string) (*models.BalanceView, error) {
	if accountId == "" {
		return nil, fmt.Errorf("account_id is required: %w", store.ErrInvalidInput)
	}

	balance, err := s.db.GetBalance(ctx, accountId)
	if err != nil {
		zap.L().Error("Failed to get balance",
			zap.String("account_id", accountId),
			zap.Error(err))
		return nil, err
	}

	return &models.BalanceView{
		Balance:     balance.Amount,
		LastUpdated: balance.LastUpdated,
	}, nil
}

// GetTransactionHistory returns one page of an account's transactions, newest first
func (s *LedgerService) GetTransactionHistory(ctx context.Context, accountId string, page, pageSize int) (*models.TransactionPage, error) {
	if accountId == "" {
		return nil, fmt.Errorf("account_id is required: %w", store.ErrInvalidInput)
	}

	page, pageSize = normalizePage(page, pageSize)
	transactions, total, err := s.db.GetTransactionHistory(ctx, accountId, pageSize, (page-1)*pageSize)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("account_id", accountId),
			zap.Error(err))
		return nil, err
	}

	result := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		result[i] = models.TransactionRecord{
			Id:            tx.Id,
			Kind:          tx.Kind,
			Amount:        tx.Amount,
			BalanceAfter:  tx.BalanceAfter,
			ReferenceId:   tx.ReferenceId,
			ReferenceKind: tx.ReferenceKind,
			Status:        tx.Status,
			CreatedAt:     tx.CreatedAt,
		}
	}

	return &models.TransactionPage{
		Transactions: result,
		Pagination:   models.NewPagination(total, page, pageSize),
	}, nil
}

// GetStats summarizes the token economy. Every kind is reported, zero or not.
func (s *LedgerService) GetStats(ctx context.Context) (*models.StatsView, error) {
	stats, err := s.db.GetStats(ctx)
	if err != nil {
		zap.L().Error("Failed to get ledger stats", zap.Error(err))
		return nil, err
	}

	byKind := make(map[models.TransactionKind]models.KindStats, len(stats.PerKind))
	for _, k := range stats.PerKind {
		byKind[k.Kind] = k
	}

	perKind := make([]models.KindStatsView, 0, len(models.AllTransactionKinds))
	for _, kind := range models.AllTransactionKinds {
		k := byKind[kind]
		perKind = append(perKind, models.KindStatsView{
			TransactionType: kind,
			Count:           k.Count,
			TotalAmount:     k.Total,
		})
	}

	return &models.StatsView{
		TotalTokensInCirculation: stats.TotalInCirculation,
		TransactionStats:         perKind,
		UsersWithTokens:          stats.AccountsWithTokens,
	}, nil
}

// ReconcileBalance compares the stored balance with the sum of the account's log
func (s *LedgerService) ReconcileBalance(ctx context.Context, accountId string) (*models.Reconciliation, error) {
	result, err := s.db.ReconcileBalance(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if !result.Matches() {
		zap.L().Warn("Balance does not match transaction log",
			zap.String("account_id", accountId),
			zap.String("stored", result.Stored.StringFixed(2)),
			zap.String("calculated", result.Calculated.StringFixed(2)),
			zap.String("difference", result.Difference().StringFixed(2)))
	}
	return result, nil
}
