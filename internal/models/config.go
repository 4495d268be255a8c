package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Auth       AuthConfig
	Ledger     LedgerConfig
	Reconciler ReconcilerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // "sqlite" or "postgres"
	Path            string
	Url             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// LedgerConfig holds action execution settings
type LedgerConfig struct {
	EconomyFile  string
	MaxRetries   int
	RetryBackoff time.Duration
}

// ReconcilerConfig holds background reconciliation settings
type ReconcilerConfig struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
}

// EconomyConfig holds the token price of every ledger action
type EconomyConfig struct {
	PostCost      decimal.Decimal
	LikeCost      decimal.Decimal
	LikeReward    decimal.Decimal
	ReshareCost   decimal.Decimal
	ReshareReward decimal.Decimal
	DailyReward   decimal.Decimal
}

// DefaultEconomy returns the standard token prices
func DefaultEconomy() EconomyConfig {
	return EconomyConfig{
		PostCost:      decimal.RequireFromString("1.00"),
		LikeCost:      decimal.RequireFromString("0.10"),
		LikeReward:    decimal.RequireFromString("0.10"),
		ReshareCost:   decimal.RequireFromString("1.00"),
		ReshareReward: decimal.RequireFromString("1.00"),
		DailyReward:   decimal.RequireFromString("0.50"),
	}
}
