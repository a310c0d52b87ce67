// Package memory is the in-process ledger backend. It backs the default
// DATA_BACKEND and the test suites; semantics mirror the SQLite backend,
// including balance effects on the touched accounts.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finview/internal/core"
	"finview/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	accounts []core.Account
}

func New() *Store {
	return &Store{}
}

// NewSeeded builds a store pre-populated with the given records. Seeded
// transactions are taken as already reflected in the seeded balances.
func NewSeeded(txs []core.Transaction, accounts []core.Account) *Store {
	s := &Store{
		txs:      append([]core.Transaction(nil), txs...),
		accounts: append([]core.Account(nil), accounts...),
	}
	return s
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.txs = append(s.txs, t)
	s.applyBalance(t, false)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.txs {
		if existing.ID != id {
			continue
		}
		s.applyBalance(existing, true)
		t.ID = id
		s.txs[i] = t
		s.applyBalance(t, false)
		return t, nil
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.txs {
		if existing.ID != id {
			continue
		}
		s.applyBalance(existing, true)
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
		return nil
	}
	return fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
}

// applyBalance adjusts the touched accounts for a transaction, or reverts
// the adjustment when undo is set. Unknown account names are created with
// a zero starting balance.
func (s *Store) applyBalance(t core.Transaction, undo bool) {
	amount := t.Amount
	if undo {
		amount = amount.Neg()
	}
	switch t.Type {
	case core.Income:
		s.adjust(t.AccountFrom, amount)
	case core.Expense:
		s.adjust(t.AccountFrom, amount.Neg())
	case core.Transfer:
		s.adjust(t.AccountFrom, amount.Neg())
		s.adjust(t.AccountTo, amount)
	}
}

func (s *Store) adjust(name string, delta decimal.Decimal) {
	if name == "" {
		return
	}
	for i := range s.accounts {
		if s.accounts[i].Name == name {
			s.accounts[i].Balance = s.accounts[i].Balance.Add(delta)
			return
		}
	}
	s.accounts = append(s.accounts, core.Account{
		ID:      uuid.NewString(),
		Name:    name,
		Balance: delta,
	})
}
