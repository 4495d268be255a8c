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
	"net/mail"
	"strings"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenAccount creates an account together with its zero balance
func (s *LedgerService) OpenAccount(ctx context.Context, name, email string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", store.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", email, store.ErrInvalidInput)
	}

	var account *models.Account
	err := s.runAction(ctx, "open_account", func(tx store.Store) error {
		var err error
		account, err = tx.CreateAccount(ctx, store.CreateAccountParams{
			AccountId: uuid.New().String(),
			Name:      name,
			Email:     email,
		})
		return err
	})
	if err != nil {
		zap.L().Error("Failed to open account", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Account opened",
		zap.String("account_id", account.Id),
		zap.String("email", account.Email))
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, accountId string) (*models.Account, error) {
	return s.db.GetAccount(ctx, accountId)
}

func (s *LedgerService) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.db.GetAccountByEmail(ctx, email)
}

func (s *LedgerService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.db.GetAccounts(ctx)
}
