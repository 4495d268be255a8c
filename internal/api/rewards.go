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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClaimDailyReward credits the daily reward once per local calendar day
func (s *LedgerService) ClaimDailyReward(ctx context.Context, accountId string) (*models.DailyRewardResult, error) {
	if accountId == "" {
		return nil, fmt.Errorf("account_id is required: %w", store.ErrInvalidInput)
	}

	var result *models.DailyRewardResult
	err := s.runAction(ctx, "daily_reward", func(tx store.Store) error {
		if err := tx.LockBalances(ctx, accountId); err != nil {
			return err
		}

		claimed, err := tx.HasTransactionSince(ctx, accountId, models.KindDailyLogin, s.today())
		if err != nil {
			return err
		}
		if claimed {
			return fmt.Errorf("account %s: %w", accountId, store.ErrAlreadyClaimed)
		}

		_, balance, err := s.postEntry(ctx, tx, entry{
			accountId: accountId,
			kind:      models.KindDailyLogin,
			amount:    s.economy.DailyReward,
		})
		if err != nil {
			return err
		}

		result = &models.DailyRewardResult{
			Reward:     s.economy.DailyReward,
			NewBalance: balance.Amount,
		}
		return nil
	})
	if err != nil {
		zap.L().Info("Daily reward rejected", zap.String("account_id", accountId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Daily reward claimed",
		zap.String("account_id", accountId),
		zap.String("new_balance", result.NewBalance.StringFixed(2)))
	return result, nil
}

// PurchaseTokens credits a positive amount. Payment capture happens upstream.
func (s *LedgerService) PurchaseTokens(ctx context.Context, accountId string, amount decimal.Decimal) (*models.PurchaseResult, error) {
	if accountId == "" {
		return nil, fmt.Errorf("account_id is required: %w", store.ErrInvalidInput)
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("purchase amount %s must be positive: %w", amount.StringFixed(2), store.ErrInvalidAmount)
	}

	var result *models.PurchaseResult
	err := s.runAction(ctx, "purchase", func(tx store.Store) error {
		if err := tx.LockBalances(ctx, accountId); err != nil {
			return err
		}

		_, balance, err := s.postEntry(ctx, tx, entry{
			accountId: accountId,
			kind:      models.KindPurchase,
			amount:    amount,
		})
		if err != nil {
			return err
		}

		result = &models.PurchaseResult{Amount: amount, NewBalance: balance.Amount}
		return nil
	})
	if err != nil {
		zap.L().Error("Purchase failed",
			zap.String("account_id", accountId),
			zap.String("amount", amount.StringFixed(2)),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Tokens purchased",
		zap.String("account_id", accountId),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("new_balance", result.NewBalance.StringFixed(2)))
	return result, nil
}
