// Package worker mirrors ledger changes into Google Sheets, driven by
// AMQP change events with a periodic pending sweep as backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finview/internal/amqp"
	"finview/internal/core"
	"finview/internal/ledger"
	"finview/internal/log"
	"finview/internal/sheets"
)

// SyncStore is the slice of the storage layer the worker needs.
type SyncStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker pushes transaction changes from SQLite to the sheets mirror.
type SyncWorker struct {
	store     SyncStore
	mirror    sheets.TransactionMirror
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(store SyncStore, mirror sheets.TransactionMirror, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
		logger:    log.New(log.Config{Component: log.ComponentWorker}),
	}
}

// HandleMessage processes a single change event from AMQP.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message", "id", msg.ID, "op", msg.Op)

	switch msg.Op {
	case amqp.OpDelete:
		if err := w.mirror.DeleteTransaction(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete transaction from mirror: %w", err)
		}
		return nil
	case amqp.OpUpsert:
		return w.syncTransaction(ctx, msg.ID)
	default:
		// Drop unknown ops instead of requeueing them forever
		w.logger.WarnContext(ctx, "Unknown sync operation, dropping message", "id", msg.ID, "op", msg.Op)
		return nil
	}
}

// ProcessPending syncs transactions that still carry pending state. This
// is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.syncTransaction(ctx, t.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync transaction", "id", t.ID, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck drains pending transactions accumulated while the
// worker was down, using a larger batch than the periodic sweep.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		w.logger.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	w.logger.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, t := range pending {
		if err := w.syncTransaction(ctx, t.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", t.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// RunPendingSweep runs ProcessPending on a ticker until ctx is cancelled.
func (w *SyncWorker) RunPendingSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping pending sweep", "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) syncTransaction(ctx context.Context, id string) error {
	t, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		// Deleted locally before the upsert was processed
		w.logger.InfoContext(ctx, "Transaction gone, removing mirror row", "id", id)
		return w.mirror.DeleteTransaction(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.mirror.UpsertTransaction(ctx, t); err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert transaction in mirror: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		// The mirror write worked, only the bookkeeping failed
		w.logger.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	w.logger.InfoContext(ctx, "Synced transaction",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String())

	return nil
}
