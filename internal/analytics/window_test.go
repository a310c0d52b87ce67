package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finview/internal/core"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func mkTx(id string, typ core.TransactionType, amount int64, date time.Time) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      decimal.NewFromInt(amount),
		AccountFrom: "HDFC",
		Date:        date,
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func sameIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterByWindowWeekly(t *testing.T) {
	txs := []core.Transaction{
		mkTx("recent", core.Expense, 10, now.AddDate(0, 0, -3)),
		mkTx("edge", core.Expense, 10, now.AddDate(0, 0, -7)),
		mkTx("old", core.Expense, 10, now.AddDate(0, 0, -8)),
		// Future-dated records have a negative day difference and always
		// pass the weekly check; this is the product's defined behavior.
		mkTx("future", core.Expense, 10, now.AddDate(0, 1, 0)),
		mkTx("invalid", core.Expense, 10, time.Time{}),
	}
	got := ids(FilterByWindow(txs, core.Weekly, now))
	if !sameIDs(got, "recent", "edge", "future") {
		t.Fatalf("weekly window: got %v", got)
	}
}

func TestFilterByWindowMonthly(t *testing.T) {
	txs := []core.Transaction{
		mkTx("same-month", core.Income, 10, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		mkTx("same-month-late", core.Income, 10, time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)),
		mkTx("prev-month", core.Income, 10, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)),
		mkTx("same-month-last-year", core.Income, 10, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)),
		mkTx("invalid", core.Income, 10, time.Time{}),
	}
	got := ids(FilterByWindow(txs, core.Monthly, now))
	if !sameIDs(got, "same-month", "same-month-late") {
		t.Fatalf("monthly window: got %v", got)
	}
}

func TestFilterByWindowYearly(t *testing.T) {
	txs := []core.Transaction{
		mkTx("jan", core.Income, 10, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		mkTx("dec", core.Income, 10, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		mkTx("last-year", core.Income, 10, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
	}
	got := ids(FilterByWindow(txs, core.Yearly, now))
	if !sameIDs(got, "jan", "dec") {
		t.Fatalf("yearly window: got %v", got)
	}
}

func TestFilterByWindowAllAndUnknown(t *testing.T) {
	txs := []core.Transaction{
		mkTx("a", core.Income, 10, time.Time{}),
		mkTx("b", core.Expense, 10, now.AddDate(-10, 0, 0)),
	}
	for _, mode := range []core.WindowMode{core.AllTime, "Quarterly", ""} {
		got := FilterByWindow(txs, mode, now)
		if len(got) != len(txs) {
			t.Fatalf("mode %q should pass everything, got %d of %d", mode, len(got), len(txs))
		}
	}
}

func TestFilterByWindowDoesNotMutateInput(t *testing.T) {
	txs := []core.Transaction{
		mkTx("a", core.Income, 10, now),
		mkTx("b", core.Expense, 10, now.AddDate(0, 0, -30)),
	}
	_ = FilterByWindow(txs, core.Weekly, now)
	if txs[0].ID != "a" || txs[1].ID != "b" {
		t.Fatal("input slice was reordered")
	}
}

func TestFilterCompound(t *testing.T) {
	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{ID: "1", Type: core.Expense, Description: "Grocery run", Division: "Personal", Category: "Food", Date: base},
		{ID: "2", Type: core.Expense, Description: "Office SUPPLIES", Division: "Office", Category: "WorkExpenses", Date: base.AddDate(0, 0, 1)},
		{ID: "3", Type: core.Income, Description: "salary", Division: "Personal", Category: "Salary", Date: base.AddDate(0, 0, 2)},
		{ID: "4", Type: core.Transfer, Description: "", Division: "Personal", Date: base.AddDate(0, 0, 3)},
	}

	cases := []struct {
		name string
		p    core.ViewParams
		want []string
	}{
		{"no constraints", core.ViewParams{}, []string{"1", "2", "3", "4"}},
		{"wildcards", core.ViewParams{Division: "All", Type: "All", Category: "All"}, []string{"1", "2", "3", "4"}},
		{"search case-insensitive", core.ViewParams{Search: "supplies"}, []string{"2"}},
		{"search excludes empty descriptions", core.ViewParams{Search: "a"}, []string{"3"}},
		{"division", core.ViewParams{Division: "Office"}, []string{"2"}},
		{"type", core.ViewParams{Type: "income"}, []string{"3"}},
		{"category", core.ViewParams{Category: "Food"}, []string{"1"}},
		{"from inclusive", core.ViewParams{From: base.AddDate(0, 0, 2)}, []string{"3", "4"}},
		{"to inclusive", core.ViewParams{To: base.AddDate(0, 0, 1)}, []string{"1", "2"}},
		{"combined", core.ViewParams{Division: "Personal", Type: "expense"}, []string{"1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(txs, tc.p))
			if !sameIDs(got, tc.want...) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGroupByDay(t *testing.T) {
	txs := []core.Transaction{
		mkTx("t1", core.Expense, 5, now.Add(-2*time.Hour)),
		mkTx("y1", core.Expense, 5, now.AddDate(0, 0, -1)),
		mkTx("t2", core.Income, 5, now.Add(-1*time.Hour)),
		mkTx("old", core.Expense, 5, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		mkTx("bad", core.Expense, 5, time.Time{}),
	}
	groups := GroupByDay(txs, now)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Label != "Today" || len(groups[0].Transactions) != 2 {
		t.Fatalf("today group wrong: %+v", groups[0])
	}
	if groups[1].Label != "Yesterday" {
		t.Fatalf("expected Yesterday label, got %q", groups[1].Label)
	}
	if groups[2].Label != "Sun Jun 01 2025" {
		t.Fatalf("unexpected day label %q", groups[2].Label)
	}
}
