package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finview/internal/amqp"
	"finview/internal/core"
	"finview/internal/ledger/memory"
)

type fakePublisher struct {
	published []*amqp.TransactionSyncMessage
	err       error
}

func (p *fakePublisher) PublishTransactionSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func sampleTx() core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(100),
		Category:    "Food",
		AccountFrom: "HDFC",
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreatePublishesUpsert(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	if pub.published[0].ID != created.ID || pub.published[0].Op != amqp.OpUpsert {
		t.Fatalf("unexpected message: %+v", pub.published[0])
	}
}

func TestDeletePublishesDelete(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := svc.DeleteTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	last := pub.published[len(pub.published)-1]
	if last.ID != created.ID || last.Op != amqp.OpDelete {
		t.Fatalf("unexpected message: %+v", last)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("CreateTransaction should succeed despite publish failure, got %v", err)
	}
	txs, _ := svc.ListTransactions(context.Background())
	if len(txs) != 1 || txs[0].ID != created.ID {
		t.Fatalf("transaction should be persisted locally, got %+v", txs)
	}
}

func TestNilPublisherIsAllowed(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	if _, err := svc.CreateTransaction(context.Background(), sampleTx()); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{Type: "bogus"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(pub.published) != 0 {
		t.Fatal("no message should be published for a failed write")
	}
}
