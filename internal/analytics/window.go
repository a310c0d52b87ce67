// Package analytics derives dashboard and report view models from
// in-memory transaction lists. Every function is a pure projection of
// (records, params): inputs are never mutated, outputs are rebuilt fresh
// on every call, and malformed records degrade to exclusion or fallback
// values instead of errors.
package analytics

import (
	"strings"
	"time"

	"finview/internal/core"
)

const hoursPerDay = 24

// FilterByWindow keeps the transactions inside the given time window
// relative to now.
//
// Weekly keeps anything whose day difference from now is at most 7. The
// difference may be negative for future-dated records, which therefore
// always pass; this mirrors the product's weekly bucket and is defined
// behavior, not an accident to fix here. Monthly and Yearly compare calendar
// month/year rather than rolling spans. Unknown modes pass everything
// through unchanged.
func FilterByWindow(txs []core.Transaction, mode core.WindowMode, now time.Time) []core.Transaction {
	switch mode {
	case core.Weekly, core.Monthly, core.Yearly:
	default:
		out := make([]core.Transaction, len(txs))
		copy(out, txs)
		return out
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if inWindow(t, mode, now) {
			out = append(out, t)
		}
	}
	return out
}

func inWindow(t core.Transaction, mode core.WindowMode, now time.Time) bool {
	// A zero date never lands in a bounded window: the weekly day
	// difference is astronomically large and the year-1 calendar fields
	// match nothing current.
	switch mode {
	case core.Weekly:
		diffDays := now.Sub(t.Date).Hours() / hoursPerDay
		return diffDays <= 7
	case core.Monthly:
		return t.Date.Month() == now.Month() && t.Date.Year() == now.Year()
	case core.Yearly:
		return t.Date.Year() == now.Year()
	}
	return true
}

// Filter applies the compound view filters as one ANDed predicate set:
// case-insensitive substring search on description, equality on
// division/type/category unless the wildcard, and an inclusive date range.
// Empty parameter values mean "no constraint".
func Filter(txs []core.Transaction, p core.ViewParams) []core.Transaction {
	search := strings.ToLower(p.Search)
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if !matches(t, p, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t core.Transaction, p core.ViewParams, search string) bool {
	if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
		return false
	}
	if !wildcard(p.Division) && t.Division != p.Division {
		return false
	}
	if !wildcard(p.Type) && string(t.Type) != p.Type {
		return false
	}
	if !wildcard(p.Category) && t.Category != p.Category {
		return false
	}
	if !p.From.IsZero() && t.Date.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && t.Date.After(p.To) {
		return false
	}
	return true
}

func wildcard(v string) bool {
	return v == "" || v == core.FilterAll
}
