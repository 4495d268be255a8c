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
	"fmt"

	"token-ledger-go/internal/common"
	"token-ledger-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	stats, err := services.Ledger.GetStats(ctx)
	if err != nil {
		logger.Fatal("Failed to get stats", zap.Error(err))
	}

	common.PrintHeader("TOKEN ECONOMY", common.DefaultWidth)
	common.PrintRow("", "Tokens in circulation", common.FormatTokens(stats.TotalTokensInCirculation))
	common.PrintRow("", "Accounts holding tokens", fmt.Sprintf("%d", stats.UsersWithTokens))
	fmt.Println()

	for i, k := range stats.TransactionStats {
		color := common.ColorReset
		if k.Count == 0 {
			color = common.ColorGray
		}
		fmt.Printf("%s%s%-15s %6d entries %12s%s\n",
			color,
			common.BoxPrefix(i == len(stats.TransactionStats)-1),
			k.TransactionType,
			k.Count,
			common.FormatSignedTokens(k.TotalAmount),
			common.ColorReset)
	}

	common.PrintFooter("Done", common.DefaultWidth)
}
