package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finview/internal/core"
	"finview/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func accountBalance(t *testing.T, repo *SQLiteRepository, name string) decimal.Decimal {
	t.Helper()
	accounts, err := repo.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	for _, a := range accounts {
		if a.Name == name {
			return a.Balance
		}
	}
	t.Fatalf("account %q not found", name)
	return decimal.Zero
}

func TestCreateAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	in := core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.RequireFromString("123.45"),
		Description: "Groceries",
		Category:    "Food",
		Division:    "Personal",
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC),
	}
	created, err := repo.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction should get an ID")
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len(txs) = %d, want 1", len(txs))
	}
	got := txs[0]
	if got.Description != "Groceries" || got.Category != "Food" || got.Division != "Personal" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Amount.Equal(in.Amount) {
		t.Fatalf("amount = %s, want %s", got.Amount, in.Amount)
	}
	if !got.Date.Equal(in.Date) {
		t.Fatalf("date = %v, want %v", got.Date, in.Date)
	}
}

func TestBalanceEffects(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	mk := func(typ core.TransactionType, amount int64, from, to string) core.Transaction {
		return core.Transaction{
			Type:        typ,
			Amount:      decimal.NewFromInt(amount),
			AccountFrom: from,
			AccountTo:   to,
			Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	if _, err := repo.CreateTransaction(ctx, mk(core.Income, 1000, "HDFC", "")); err != nil {
		t.Fatalf("income: %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, mk(core.Expense, 250, "HDFC", "")); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, mk(core.Transfer, 300, "HDFC", "SBI")); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := accountBalance(t, repo, "HDFC"); !got.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("HDFC balance = %s, want 450", got)
	}
	if got := accountBalance(t, repo, "SBI"); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("SBI balance = %s, want 300", got)
	}
}

func TestUpdateRevertsAndReapplies(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(200),
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	_, err = repo.UpdateTransaction(ctx, created.ID, core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(50),
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got := accountBalance(t, repo, "HDFC"); !got.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("HDFC balance = %s, want -50", got)
	}
}

func TestDeleteRemovesAndRestores(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(75),
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if got := accountBalance(t, repo, "HDFC"); !got.Equal(decimal.Zero) {
		t.Fatalf("HDFC balance = %s, want 0", got)
	}
	if _, err := repo.GetTransaction(ctx, created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNotFoundMapping(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.DeleteTransaction(ctx, "missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	_, err := repo.UpdateTransaction(ctx, "missing", core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(1),
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(10),
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("pending = %+v, want the created transaction", pending)
	}

	if err := repo.MarkSynced(ctx, created.ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending transactions after MarkSynced, got %d", len(pending))
	}

	if err := repo.MarkSyncError(ctx, created.ID); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}
	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored transactions must not reappear as pending, got %d", len(pending))
	}
}
