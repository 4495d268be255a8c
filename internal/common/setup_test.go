package common

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"go.uber.org/zap"
)

func TestInitializeStoreRejectsUnknownDriver(t *testing.T) {
	_, err := InitializeStore(context.Background(), models.DatabaseConfig{Driver: "mysql"})
	if err == nil {
		t.Fatal("Expected an error for an unknown driver")
	}
}

func TestInitializeServicesWithSQLite(t *testing.T) {
	cfg := &models.Config{
		Database: models.DatabaseConfig{
			Driver:       "sqlite",
			Path:         filepath.Join(t.TempDir(), "ledger.db"),
			MaxOpenConns: 2,
			PingTimeout:  5 * time.Second,
			BusyTimeout:  time.Second,
		},
		Ledger: models.LedgerConfig{EconomyFile: filepath.Join(t.TempDir(), "absent.yaml")},
	}

	services, err := InitializeServices(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeServices failed: %v", err)
	}
	defer services.Close()

	if err := services.Ledger.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}

	ctx := context.Background()
	account, err := services.Ledger.OpenAccount(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("OpenAccount failed: %v", err)
	}

	accounts, err := ResolveAccounts(ctx, services.Store, "alice@example.com", zap.NewNop())
	if err != nil {
		t.Fatalf("ResolveAccounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Id != account.Id {
		t.Errorf("Unexpected accounts: %+v", accounts)
	}

	if _, err := ResolveAccounts(ctx, services.Store, "nobody@example.com", zap.NewNop()); err == nil {
		t.Error("Expected an error for an unknown email")
	} else if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected a not found error, got %v", err)
	}
}

func TestInitializeLoggerReplacesGlobal(t *testing.T) {
	previous := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(previous) })

	logger, cleanup := InitializeLogger()
	defer cleanup()

	if zap.L() != logger {
		t.Fatal("Expected the global logger to be the initialized logger")
	}
	if !zap.L().Core().Enabled(zap.ErrorLevel) {
		t.Error("Expected the global logger to emit errors")
	}
}
