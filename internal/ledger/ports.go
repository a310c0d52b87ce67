// Package ledger defines the outbound ports for transaction and account
// data. The HTTP layer depends on these interfaces only; concrete
// implementations live in storage (SQLite), apiclient (upstream REST) and
// ledger/memory (in-process, for the default backend and tests).
package ledger

import (
	"context"
	"errors"

	"finview/internal/core"
)

// ErrNotFound is returned when a transaction ID does not exist in the
// backend.
var ErrNotFound = errors.New("not found")

type (
	// TransactionReader loads the full transaction list. The analytics
	// layer recomputes all view models from scratch on every read; there
	// is no incremental contract.
	TransactionReader interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// AccountReader loads the account list with current balances.
	AccountReader interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	// TransactionWriter mutates the transaction set. Create and Update
	// return the stored record (with its assigned ID); failures propagate
	// to the caller unchanged.
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// Store bundles the full backend surface the server needs.
	Store interface {
		TransactionReader
		AccountReader
		TransactionWriter
	}
)
