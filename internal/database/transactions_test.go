package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestGetTransactionHistory_NewestFirst(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	accountId := createTestAccount(t, service, "alice")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		tx, err := service.AppendTransaction(ctx, store.AppendTransactionParams{
			AccountId:    accountId,
			Kind:         models.KindPurchase,
			Amount:       decimal.NewFromInt(int64(i + 1)),
			BalanceAfter: decimal.NewFromInt(int64(i + 1)),
			// the last two share a timestamp and must fall back to insertion order
			CreatedAt: base.Add(time.Duration(min(i, 3)) * time.Minute),
		})
		if err != nil {
			t.Fatalf("AppendTransaction failed: %v", err)
		}
		ids = append(ids, tx.Id)
	}

	page, total, err := service.GetTransactionHistory(ctx, accountId, 2, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if total != 5 {
		t.Errorf("Expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(page))
	}
	if page[0].Id != ids[4] || page[1].Id != ids[3] {
		t.Errorf("Expected tie broken by insertion order, got %s, %s", page[0].Id, page[1].Id)
	}

	last, _, err := service.GetTransactionHistory(ctx, accountId, 2, 4)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(last) != 1 || last[0].Id != ids[0] {
		t.Errorf("Expected the oldest entry on the last page, got %+v", last)
	}
	if !last[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected amount 1, got %s", last[0].Amount.String())
	}
	if last[0].Status != models.StatusCompleted {
		t.Errorf("Expected status completed, got %s", last[0].Status)
	}
}

func TestHasTransactionSince(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	accountId := createTestAccount(t, service, "alice")

	claimedAt := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	_, err := service.AppendTransaction(ctx, store.AppendTransactionParams{
		AccountId:    accountId,
		Kind:         models.KindDailyLogin,
		Amount:       decimal.RequireFromString("0.50"),
		BalanceAfter: decimal.RequireFromString("0.50"),
		CreatedAt:    claimedAt,
	})
	if err != nil {
		t.Fatalf("AppendTransaction failed: %v", err)
	}

	found, err := service.HasTransactionSince(ctx, accountId, models.KindDailyLogin, claimedAt.Truncate(24*time.Hour))
	if err != nil {
		t.Fatalf("HasTransactionSince failed: %v", err)
	}
	if !found {
		t.Errorf("Expected claim to be found for the same day")
	}

	found, err = service.HasTransactionSince(ctx, accountId, models.KindDailyLogin, claimedAt.Add(time.Second))
	if err != nil {
		t.Fatalf("HasTransactionSince failed: %v", err)
	}
	if found {
		t.Errorf("Expected no claim after the claim instant")
	}

	found, err = service.HasTransactionSince(ctx, accountId, models.KindPurchase, time.Time{})
	if err != nil {
		t.Fatalf("HasTransactionSince failed: %v", err)
	}
	if found {
		t.Errorf("Expected kinds to be filtered")
	}
}

func TestGetStatsAndReconcile(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestAccount(t, service, "alice")
	bob := createTestAccount(t, service, "bob")
	createTestAccount(t, service, "carol")

	fund(t, service, alice, "0.10")
	fund(t, service, alice, "0.20")
	fund(t, service, bob, "2.05")

	stats, err := service.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if !stats.TotalInCirculation.Equal(decimal.RequireFromString("2.35")) {
		t.Errorf("Expected 2.35 in circulation, got %s", stats.TotalInCirculation.String())
	}
	if stats.AccountsWithTokens != 2 {
		t.Errorf("Expected 2 funded accounts, got %d", stats.AccountsWithTokens)
	}
	if len(stats.PerKind) != 1 || stats.PerKind[0].Kind != models.KindPurchase || stats.PerKind[0].Count != 3 {
		t.Fatalf("Unexpected per-kind stats: %+v", stats.PerKind)
	}
	if !stats.PerKind[0].Total.Equal(decimal.RequireFromString("2.35")) {
		t.Errorf("Expected purchase total 2.35, got %s", stats.PerKind[0].Total.String())
	}

	rec, err := service.ReconcileBalance(ctx, alice)
	if err != nil {
		t.Fatalf("ReconcileBalance failed: %v", err)
	}
	if !rec.Matches() {
		t.Errorf("Expected balance to reconcile, stored=%s calculated=%s", rec.Stored, rec.Calculated)
	}

	// drift the stored balance without logging it
	balance, err := service.GetBalance(ctx, bob)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if _, err := service.AdjustBalance(ctx, store.AdjustBalanceParams{
		AccountId:       bob,
		Delta:           decimal.RequireFromString("1.00"),
		ExpectedVersion: balance.Version,
	}); err != nil {
		t.Fatalf("AdjustBalance failed: %v", err)
	}

	rec, err = service.ReconcileBalance(ctx, bob)
	if err != nil {
		t.Fatalf("ReconcileBalance failed: %v", err)
	}
	if rec.Matches() {
		t.Errorf("Expected mismatch after unlogged adjustment")
	}
	if !rec.Difference().Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("Expected difference 1.00, got %s", rec.Difference().String())
	}
}

func TestReconcileBalance_UnknownAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.ReconcileBalance(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
