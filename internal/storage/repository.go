package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finview/internal/core"
	"finview/internal/ledger"

	_ "modernc.org/sqlite"
)

// Sync states for the pending-sync queue consumed by the worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

const dateLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, description, category, division, account_from, account_to, date
		FROM transactions
		ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, balance FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var balance string
		if err := rows.Scan(&a.ID, &a.Name, &balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parse balance for account %s: %w", a.Name, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, type, amount, description, category, division, account_from, account_to, date, sync_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Type), t.Amount.String(), t.Description, t.Category, t.Division,
			t.AccountFrom, t.AccountTo, t.Date.UTC().Format(dateLayout), SyncPending)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return applyBalance(ctx, tx, t, false)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"category", t.Category)

	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = id

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyBalance(ctx, tx, old, true); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE transactions
			SET type = ?, amount = ?, description = ?, category = ?, division = ?,
			    account_from = ?, account_to = ?, date = ?, sync_status = ?
			WHERE id = ?`,
			string(t.Type), t.Amount.String(), t.Description, t.Category, t.Division,
			t.AccountFrom, t.AccountTo, t.Date.UTC().Format(dateLayout), SyncPending, id)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return applyBalance(ctx, tx, t, false)
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyBalance(ctx, tx, old, true); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}

// GetTransaction retrieves a single transaction by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount, description, category, division, account_from, account_to, date
		FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// GetPendingSync returns transactions that still need to be pushed to the
// sheets mirror, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, description, category, division, account_from, account_to, date
		FROM transactions
		WHERE sync_status = ?
		ORDER BY created_at
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return out, nil
}

// MarkSynced marks a transaction as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, time.Now().UTC().Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a transaction whose mirror push failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, amount, date string
	err := row.Scan(&t.ID, &typ, &amount, &t.Description, &t.Category, &t.Division,
		&t.AccountFrom, &t.AccountTo, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount for transaction %s: %w", t.ID, err)
	}
	t.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date for transaction %s: %w", t.ID, err)
	}
	return t, nil
}

func getTransaction(ctx context.Context, tx *sql.Tx, id string) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, type, amount, description, category, division, account_from, account_to, date
		FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// applyBalance applies the balance effect of t inside the given sql
// transaction. With undo set it reverses the effect instead.
func applyBalance(ctx context.Context, tx *sql.Tx, t core.Transaction, undo bool) error {
	amount := t.Amount
	if undo {
		amount = amount.Neg()
	}

	switch t.Type {
	case core.Income:
		return adjustAccount(ctx, tx, t.AccountFrom, amount)
	case core.Expense:
		return adjustAccount(ctx, tx, t.AccountFrom, amount.Neg())
	case core.Transfer:
		if err := adjustAccount(ctx, tx, t.AccountFrom, amount.Neg()); err != nil {
			return err
		}
		return adjustAccount(ctx, tx, t.AccountTo, amount)
	default:
		return core.ErrInvalidType
	}
}

func adjustAccount(ctx context.Context, tx *sql.Tx, name string, delta decimal.Decimal) error {
	var id, balance string
	err := tx.QueryRowContext(ctx, `SELECT id, balance FROM accounts WHERE name = ?`, name).Scan(&id, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		_, err := tx.ExecContext(ctx, `INSERT INTO accounts (id, name, balance) VALUES (?, ?, ?)`,
			uuid.NewString(), name, delta.String())
		if err != nil {
			return fmt.Errorf("create account %s: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read account %s: %w", name, err)
	}

	current, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("parse balance for account %s: %w", name, err)
	}
	_, err = tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`,
		current.Add(delta).String(), id)
	if err != nil {
		return fmt.Errorf("update account %s: %w", name, err)
	}
	return nil
}
