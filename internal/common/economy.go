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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"token-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// EconomyFile is the YAML layout of the token prices. Amounts are strings so
// they are parsed exactly.
type EconomyFile struct {
	PostCost      string `yaml:"post_cost"`
	LikeCost      string `yaml:"like_cost"`
	LikeReward    string `yaml:"like_reward"`
	ReshareCost   string `yaml:"reshare_cost"`
	ReshareReward string `yaml:"reshare_reward"`
	DailyReward   string `yaml:"daily_reward"`
}

// LoadEconomy reads the token prices. A missing file yields the defaults;
// keys left out of the file keep their default value.
func LoadEconomy(economyFile string) (models.EconomyConfig, error) {
	economy := models.DefaultEconomy()
	if economyFile == "" {
		return economy, nil
	}

	economyPath := economyFile
	if !filepath.IsAbs(economyFile) {
		wd, err := os.Getwd()
		if err != nil {
			return economy, fmt.Errorf("failed to get working directory: %w", err)
		}
		economyPath = filepath.Join(wd, economyFile)
	}

	data, err := os.ReadFile(economyPath)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Info("Economy file not found, using default prices", zap.String("file", economyFile))
		return economy, nil
	}
	if err != nil {
		return economy, fmt.Errorf("unable to read %s: %w", economyFile, err)
	}

	var file EconomyFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return economy, fmt.Errorf("unable to parse %s: %w", economyFile, err)
	}

	for _, field := range []struct {
		name   string
		raw    string
		target *decimal.Decimal
	}{
		{"post_cost", file.PostCost, &economy.PostCost},
		{"like_cost", file.LikeCost, &economy.LikeCost},
		{"like_reward", file.LikeReward, &economy.LikeReward},
		{"reshare_cost", file.ReshareCost, &economy.ReshareCost},
		{"reshare_reward", file.ReshareReward, &economy.ReshareReward},
		{"daily_reward", file.DailyReward, &economy.DailyReward},
	} {
		if field.raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(field.raw)
		if err != nil {
			return economy, fmt.Errorf("%s in %s is not a number: %q", field.name, economyFile, field.raw)
		}
		if amount.IsNegative() {
			return economy, fmt.Errorf("%s in %s cannot be negative, got %s", field.name, economyFile, field.raw)
		}
		if !amount.Equal(amount.Round(2)) {
			return economy, fmt.Errorf("%s in %s has more than two decimals: %s", field.name, economyFile, field.raw)
		}
		*field.target = amount
	}

	zap.L().Info("Loaded economy",
		zap.String("file", economyFile),
		zap.String("post_cost", economy.PostCost.StringFixed(2)),
		zap.String("like_cost", economy.LikeCost.StringFixed(2)),
		zap.String("like_reward", economy.LikeReward.StringFixed(2)),
		zap.String("reshare_cost", economy.ReshareCost.StringFixed(2)),
		zap.String("reshare_reward", economy.ReshareReward.StringFixed(2)),
		zap.String("daily_reward", economy.DailyReward.StringFixed(2)))

	return economy, nil
}
