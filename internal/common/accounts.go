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

package common

import (
	"context"
	"fmt"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"go.uber.org/zap"
)

// ResolveAccounts returns the single account with the given email, or every
// account when the filter is empty
func ResolveAccounts(ctx context.Context, accounts store.AccountStore, emailFilter string, logger *zap.Logger) ([]models.Account, error) {
	if emailFilter != "" {
		logger.Info("Looking up account by email", zap.String("email", emailFilter))
		account, err := accounts.GetAccountByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("account not found: %w", err)
		}
		return []models.Account{*account}, nil
	}

	all, err := accounts.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	logger.Info("Retrieved accounts", zap.Int("count", len(all)))
	return all, nil
}
