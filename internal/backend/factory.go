// Package backend builds a ledger store from configuration, hiding
// which of the storage implementations is actually in use.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finview/internal/amqp"
	"finview/internal/apiclient"
	"finview/internal/ledger/memory"
	"finview/internal/services"
	"finview/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case APIBackend:
		return f.createAPIBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	// NewSQLiteRepository migrates the schema itself
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional, writes still succeed when the broker is down
	var publisher services.SyncPublisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(repo, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{
		Store:   svc,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createAPIBackend(config Config) (*Result, error) {
	client := apiclient.New(config.APIBaseURL)

	f.logger.Info("Initialized API backend", "base_url", config.APIBaseURL)

	return &Result{
		Store:   client,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized in-memory backend")

	return &Result{
		Store:   memory.New(),
		Cleanup: nil,
	}, nil
}
