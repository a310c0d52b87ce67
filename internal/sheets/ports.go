// Package sheets defines the ports for mirroring the ledger to an
// external spreadsheet.
package sheets

import (
	"context"

	"finview/internal/core"
)

// TransactionMirror maintains a row-per-transaction copy of the ledger.
type TransactionMirror interface {
	// UpsertTransaction writes the transaction's row, replacing any
	// existing row with the same ID.
	UpsertTransaction(ctx context.Context, t core.Transaction) error

	// DeleteTransaction removes the row with the given ID. Deleting a
	// row that does not exist is not an error.
	DeleteTransaction(ctx context.Context, id string) error
}
