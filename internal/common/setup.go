package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"token-ledger-go/internal/api"
	"token-ledger-go/internal/config"
	"token-ledger-go/internal/database"
	"token-ledger-go/internal/models"
	"token-ledger-go/internal/postgres"
	"token-ledger-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Store  store.LedgerStore
	Ledger *api.LedgerService
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeStore opens the backend selected by DATABASE_DRIVER
func InitializeStore(ctx context.Context, cfg models.DatabaseConfig) (store.LedgerStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		zap.L().Info("Using PostgreSQL backend")
		service, err := postgres.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return service, nil
	case config.DriverSQLite, "":
		zap.L().Info("Using SQLite backend", zap.String("path", cfg.Path))
		service, err := database.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return service, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// InitializeServices opens the store and builds the ledger on top of it
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := InitializeStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	economy, err := LoadEconomy(cfg.Ledger.EconomyFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	ledger := api.NewLedgerService(api.LedgerServiceConfig{
		Store:        dbService,
		Economy:      economy,
		MaxRetries:   cfg.Ledger.MaxRetries,
		RetryBackoff: cfg.Ledger.RetryBackoff,
	})

	return &Services{Store: dbService, Ledger: ledger}, nil
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
