package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the aggregate totals for one filtered transaction set.
// Balance is income minus expense; transfers are assumed to net to zero
// across the owner's own accounts and are excluded from it.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Transfer decimal.Decimal `json:"transfer"`
	Balance  decimal.Decimal `json:"balance"`
}

// CategoryShare is one slice of the expense distribution.
type CategoryShare struct {
	Name    string          `json:"name"`
	Icon    string          `json:"icon"`
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent"`
}

// RankedCategory is the head of the descending expense distribution.
type RankedCategory struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// TrendPoint is one calendar day's income/expense totals.
type TrendPoint struct {
	Date    time.Time       `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DayGroup is a labeled bucket of transactions sharing a calendar day,
// as shown in the transaction list ("Today", "Yesterday", or a date).
type DayGroup struct {
	Label        string        `json:"label"`
	Date         time.Time     `json:"date"`
	Transactions []Transaction `json:"transactions"`
}
