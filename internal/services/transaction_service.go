// Package services orchestrates ledger writes across local storage and
// the AMQP change-event stream.
package services

import (
	"context"
	"fmt"

	"finview/internal/amqp"
	"finview/internal/core"
	"finview/internal/ledger"
	"finview/internal/log"
)

// SyncPublisher publishes transaction change events.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error
	Close() error
}

// TransactionService wraps a ledger store and emits a change event after
// every successful write. Publish failures never fail the local write,
// the worker's pending sweep picks those rows up later.
type TransactionService struct {
	store     ledger.Store
	publisher SyncPublisher
	logger    *log.Logger
}

var _ ledger.Store = (*TransactionService)(nil)

func NewTransactionService(store ledger.Store, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    log.New(log.Config{Component: log.ComponentLedger}),
	}
}

func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.NewTransactionSyncMessage(created.ID))
	return created, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	updated, err := s.store.UpdateTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.NewTransactionSyncMessage(updated.ID))
	return updated, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewTransactionDeleteMessage(id))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.TransactionSyncMessage) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping change event",
			log.FieldTransactionID, msg.ID)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldTransactionID, msg.ID,
			log.FieldOperation, msg.Op,
			log.FieldError, err)
	}
}

// Close closes the underlying store and publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
