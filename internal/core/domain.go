package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Weekly  WindowMode = "Weekly"
	Monthly WindowMode = "Monthly"
	Yearly  WindowMode = "Yearly"
	AllTime WindowMode = "All"
)

// FilterAll is the wildcard value for division/type/category filters.
const FilterAll = "All"

// FallbackCategory is used whenever a transaction carries no category label.
const FallbackCategory = "Other"

type (
	TransactionType string

	WindowMode string

	// Transaction is an externally supplied record. The analytics layer
	// treats it as read-only and tolerates shape violations; Validate is
	// only enforced on the write path.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Division    string          `json:"division"`
		AccountFrom string          `json:"accountFrom"`
		AccountTo   string          `json:"accountTo,omitempty"`
		Date        time.Time       `json:"date"`
	}

	Account struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Balance decimal.Decimal `json:"balance"`
	}

	// ViewParams captures everything a view can filter on. Zero values mean
	// "no constraint"; they are reconstructed per request and never stored.
	ViewParams struct {
		Mode     WindowMode
		Division string
		Type     string
		Category string
		Search   string
		From     time.Time
		To       time.Time
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrMissingAccount   = errors.New("missing account")
	ErrSameAccount      = errors.New("transfer accounts must differ")
	ErrUnexpectedTarget = errors.New("account to is only valid for transfers")
)

// CategoryOrFallback returns the trimmed category label, or FallbackCategory
// when the label is absent or blank.
func (t Transaction) CategoryOrFallback() string {
	c := strings.TrimSpace(t.Category)
	if c == "" {
		return FallbackCategory
	}
	return c
}

// Touches reports whether the transaction debits or credits the named account.
func (t Transaction) Touches(account string) bool {
	if t.AccountFrom == account {
		return true
	}
	return t.Type == Transfer && t.AccountTo == account
}

func (tt TransactionType) Valid() bool {
	switch tt {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Validate enforces the write-path invariants. Readers never call this:
// records coming back from the upstream API are accepted as-is.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.AccountFrom) == "" {
		return ErrMissingAccount
	}
	switch t.Type {
	case Transfer:
		if strings.TrimSpace(t.AccountTo) == "" {
			return ErrMissingAccount
		}
		if t.AccountTo == t.AccountFrom {
			return ErrSameAccount
		}
	default:
		if t.AccountTo != "" {
			return ErrUnexpectedTarget
		}
	}
	return nil
}
