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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"

	"token-ledger-go/internal/common"
	"token-ledger-go/internal/config"
	"token-ledger-go/internal/server"
	"token-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func main() {
	name := flag.String("name", "", "Account holder name (required)")
	email := flag.String("email", "", "Account email (required)")
	grant := flag.String("grant", "", "Optional token amount credited as a purchase after opening")
	flag.Parse()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := validateName(*name); err != nil {
		logger.Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*email); err != nil {
		logger.Fatal("Invalid email", zap.Error(err))
	}

	var grantAmount decimal.Decimal
	if *grant != "" {
		grantAmount, err = decimal.NewFromString(*grant)
		if err != nil {
			logger.Fatal("Invalid grant amount", zap.String("grant", *grant), zap.Error(err))
		}
	}

	ctx := context.Background()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := services.Ledger.OpenAccount(ctx, *name, *email)
	if errors.Is(err, store.ErrConflict) {
		logger.Info("Account already exists, issuing a token for it", zap.String("email", *email))
		account, err = services.Ledger.GetAccountByEmail(ctx, *email)
	}
	if err != nil {
		logger.Fatal("Failed to open account", zap.Error(err))
	}

	if grantAmount.IsPositive() {
		if _, err := services.Ledger.PurchaseTokens(ctx, account.Id, grantAmount); err != nil {
			logger.Fatal("Failed to grant tokens", zap.Error(err))
		}
	}

	balance, err := services.Ledger.GetBalance(ctx, account.Id)
	if err != nil {
		logger.Fatal("Failed to read balance", zap.Error(err))
	}

	var token string
	if cfg.Auth.Secret != "" {
		issuer, err := server.NewTokenIssuer(cfg.Auth)
		if err != nil {
			logger.Fatal("Failed to initialize token issuer", zap.Error(err))
		}
		if token, err = issuer.Issue(account); err != nil {
			logger.Fatal("Failed to issue token", zap.Error(err))
		}
	}

	common.PrintHeader("ACCOUNT READY", common.DefaultWidth)
	common.PrintRow("", "Name", account.Name)
	common.PrintRow("", "Email", account.Email)
	common.PrintRow("", "Account ID", account.Id)
	common.PrintRow("", "Balance", common.FormatTokens(balance.Balance))
	if token != "" {
		common.PrintRow("", "Bearer token", token)
	} else {
		common.PrintRow("", "Bearer token", "JWT_SECRET not set, no token issued")
	}
	common.PrintFooter("Done", common.DefaultWidth)
}
