package common

import (
	"os"
	"path/filepath"
	"testing"

	"token-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

func writeEconomy(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "economy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write economy file: %v", err)
	}
	return path
}

func TestLoadEconomyMissingFileUsesDefaults(t *testing.T) {
	economy, err := LoadEconomy(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadEconomy failed: %v", err)
	}
	defaults := models.DefaultEconomy()
	if !economy.PostCost.Equal(defaults.PostCost) || !economy.ReshareReward.Equal(defaults.ReshareReward) {
		t.Errorf("Expected defaults, got %+v", economy)
	}
}

func TestLoadEconomyOverrides(t *testing.T) {
	path := writeEconomy(t, "post_cost: \"2.00\"\ndaily_reward: \"0.25\"\n")

	economy, err := LoadEconomy(path)
	if err != nil {
		t.Fatalf("LoadEconomy failed: %v", err)
	}
	if !economy.PostCost.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("Expected post cost 2.00, got %s", economy.PostCost)
	}
	if !economy.DailyReward.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Expected daily reward 0.25, got %s", economy.DailyReward)
	}
	if !economy.LikeCost.Equal(models.DefaultEconomy().LikeCost) {
		t.Errorf("Unset keys must keep their default, got like cost %s", economy.LikeCost)
	}
}

func TestLoadEconomyRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"not a number":   "like_cost: \"ten\"\n",
		"negative":       "like_cost: \"-0.10\"\n",
		"three decimals": "like_cost: \"0.105\"\n",
		"unknown key":    "tip_cost: \"1.00\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadEconomy(writeEconomy(t, content)); err == nil {
				t.Errorf("Expected an error for %q", content)
			}
		})
	}
}
