package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finview/internal/core"
)

// DefaultRecentLimit bounds the dashboard recent-activity slice.
const DefaultRecentLimit = 8

// DefaultAccountLimit bounds the per-account latest-transactions slice.
const DefaultAccountLimit = 12

// DonutSlices is how many categories the report donut shows.
const DonutSlices = 6

// SortOrder selects how category breakdowns are ordered.
type SortOrder string

const (
	ByAmountDesc SortOrder = "high"
	ByAmountAsc  SortOrder = "low"
	ByName       SortOrder = "name"
)

var hundred = decimal.NewFromInt(100)

// Summarize totals the transaction amounts by type. Balance is
// income − expense; transfers net to zero across the owner's accounts and
// are reported separately. Unknown types contribute to nothing.
func Summarize(txs []core.Transaction) core.Summary {
	var s core.Summary
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		case core.Transfer:
			s.Transfer = s.Transfer.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// BreakdownByCategory builds the expense distribution: expense rows only,
// optionally restricted to one division, grouped by category (blank labels
// fall back to "Other"), with each group's share of the total expense.
// When the total is zero every percent is zero. The optional search is a
// case-insensitive substring match on the group name, applied after
// grouping and before sorting. Ties keep first-encountered category order.
func BreakdownByCategory(txs []core.Transaction, division, search string, order SortOrder) []core.CategoryShare {
	var names []string
	sums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if !wildcard(division) && t.Division != division {
			continue
		}
		name := t.CategoryOrFallback()
		if _, seen := sums[name]; !seen {
			names = append(names, name)
		}
		sums[name] = sums[name].Add(t.Amount)
	}

	total := decimal.Zero
	for _, name := range names {
		total = total.Add(sums[name])
	}

	searchLower := strings.ToLower(search)
	shares := make([]core.CategoryShare, 0, len(names))
	for _, name := range names {
		if searchLower != "" && !strings.Contains(strings.ToLower(name), searchLower) {
			continue
		}
		share := core.CategoryShare{Name: name, Icon: core.CategoryIcon(name), Amount: sums[name]}
		if total.IsPositive() {
			share.Percent, _ = share.Amount.Mul(hundred).Div(total).Float64()
		}
		shares = append(shares, share)
	}

	switch order {
	case ByAmountAsc:
		sort.SliceStable(shares, func(i, j int) bool {
			return shares[i].Amount.LessThan(shares[j].Amount)
		})
	case ByName:
		sort.SliceStable(shares, func(i, j int) bool {
			return shares[i].Name < shares[j].Name
		})
	default:
		sort.SliceStable(shares, func(i, j int) bool {
			return shares[i].Amount.GreaterThan(shares[j].Amount)
		})
	}
	return shares
}

// TopCategory returns the largest expense category. It reuses the
// breakdown grouping so the two views can never disagree on which category
// is on top. With no expense rows it returns the fallback category at zero.
func TopCategory(txs []core.Transaction) core.RankedCategory {
	shares := BreakdownByCategory(txs, core.FilterAll, "", ByAmountDesc)
	if len(shares) == 0 {
		return core.RankedCategory{Name: core.FallbackCategory, Amount: decimal.Zero}
	}
	return core.RankedCategory{Name: shares[0].Name, Amount: shares[0].Amount}
}

// TopN trims a breakdown to its first n entries without re-sorting.
func TopN(shares []core.CategoryShare, n int) []core.CategoryShare {
	if n < 0 {
		n = 0
	}
	if len(shares) <= n {
		return shares
	}
	return shares[:n]
}

// BuildTrend groups transactions by calendar day, summing income and
// expense per day (transfers create the day bucket but contribute to
// neither total). Days with no transactions produce no point. Records
// without a parseable date are dropped. The series is sorted by the actual
// date value, not its string form.
func BuildTrend(txs []core.Transaction) []core.TrendPoint {
	idx := make(map[string]int)
	points := make([]core.TrendPoint, 0)
	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		y, m, d := t.Date.Date()
		key := t.Date.Format("2006-01-02")
		i, ok := idx[key]
		if !ok {
			i = len(points)
			idx[key] = i
			points = append(points, core.TrendPoint{
				Date: time.Date(y, m, d, 0, 0, 0, 0, t.Date.Location()),
			})
		}
		switch t.Type {
		case core.Income:
			points[i].Income = points[i].Income.Add(t.Amount)
		case core.Expense:
			points[i].Expense = points[i].Expense.Add(t.Amount)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// RecentActivity returns the newest transactions, most recent first. The
// sort is stable so same-instant records keep their input order, and the
// input slice is never reordered. A non-positive limit uses
// DefaultRecentLimit.
func RecentActivity(txs []core.Transaction, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AccountActivity returns the newest transactions that touch the named
// account, most recent first.
func AccountActivity(txs []core.Transaction, account string, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultAccountLimit
	}
	touching := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Touches(account) {
			touching = append(touching, t)
		}
	}
	return RecentActivity(touching, limit)
}

// BalancePercent is the balance-health ring value: the share of income
// still unspent, clamped to [0, 100]. Zero or negative income yields zero
// rather than a division fault.
func BalancePercent(s core.Summary) float64 {
	if !s.Income.IsPositive() {
		return 0
	}
	percent, _ := s.Balance.Mul(hundred).Div(s.Income).Float64()
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// TotalBalance sums the balances of all accounts.
func TotalBalance(accounts []core.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Categories returns the distinct non-blank category labels present in the
// input, in first-seen order, for populating filter dropdowns.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range txs {
		c := strings.TrimSpace(t.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
