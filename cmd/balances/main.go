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
	"flag"
	"fmt"

	"token-ledger-go/internal/api"
	"token-ledger-go/internal/common"
	"token-ledger-go/internal/config"
	"token-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalAccounts    int
	fundedAccounts   int
	mismatchAccounts int
}

func formatTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	return common.ShortId(txId) + "..."
}

func printAccount(account models.Account, balance *models.BalanceView) {
	fmt.Printf("\n┌─ Account: %s (%s)\n", account.Name, account.Email)
	fmt.Printf("│  ID: %s\n", account.Id)
	fmt.Printf("│  Balance: %s (updated: %s)\n",
		common.FormatTokens(balance.Balance),
		balance.LastUpdated.Local().Format("2006-01-02 15:04:05"))
}

func printRecentTransactions(history *models.TransactionPage) {
	if len(history.Transactions) == 0 {
		fmt.Println(common.BoxPrefix(true) + "no transactions")
		return
	}
	for i, tx := range history.Transactions {
		fmt.Printf("%s%-15s %8s -> %8s  %s  %s\n",
			common.BoxPrefix(i == len(history.Transactions)-1),
			tx.Kind,
			common.FormatSignedTokens(tx.Amount),
			common.FormatTokens(tx.BalanceAfter),
			formatTransactionId(tx.Id),
			tx.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func printReconciliation(result *models.Reconciliation) {
	if result.Matches() {
		fmt.Printf("│  %s✓ matches transaction log%s\n", common.ColorGreen, common.ColorReset)
		return
	}
	fmt.Printf("│  %s✗ log sums to %s (difference %s)%s\n",
		common.ColorRed,
		common.FormatTokens(result.Calculated),
		common.FormatSignedTokens(result.Difference()),
		common.ColorReset)
}

func processAccount(ctx context.Context, ledger *api.LedgerService, account models.Account, recent int, reconcile bool) (*models.BalanceView, bool, error) {
	balance, err := ledger.GetBalance(ctx, account.Id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get balance: %w", err)
	}
	printAccount(account, balance)

	matches := true
	if reconcile {
		result, err := ledger.ReconcileBalance(ctx, account.Id)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reconcile: %w", err)
		}
		printReconciliation(result)
		matches = result.Matches()
	}

	if recent > 0 {
		history, err := ledger.GetTransactionHistory(ctx, account.Id, 1, recent)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get history: %w", err)
		}
		printRecentTransactions(history)
	}

	return balance, matches, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific account email (optional)")
	recentFlag := flag.Int("recent", 5, "Number of recent transactions to show per account")
	reconcileFlag := flag.Bool("reconcile", false, "Compare each balance with the sum of its transaction log")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	accounts, err := common.ResolveAccounts(ctx, services.Store, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to resolve accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	stats := balanceStats{}
	for _, account := range accounts {
		stats.totalAccounts++

		balance, matches, err := processAccount(ctx, services.Ledger, account, *recentFlag, *reconcileFlag)
		if err != nil {
			logger.Error("Failed to process account",
				zap.String("account_id", account.Id),
				zap.String("email", account.Email),
				zap.Error(err))
			continue
		}
		if balance.Balance.IsPositive() {
			stats.fundedAccounts++
		}
		if !matches {
			stats.mismatchAccounts++
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d accounts, %d funded", stats.totalAccounts, stats.fundedAccounts)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d not matching their log", stats.mismatchAccounts)
	}
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("accounts", stats.totalAccounts),
		zap.Int("funded", stats.fundedAccounts),
		zap.Int("mismatches", stats.mismatchAccounts))
}
