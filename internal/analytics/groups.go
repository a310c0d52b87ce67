package analytics

import (
	"time"

	"finview/internal/core"
)

// dayLabelLayout matches the date strings the transaction list shows for
// days other than today and yesterday.
const dayLabelLayout = "Mon Jan 02 2006"

// GroupByDay buckets transactions by calendar day for the transaction list,
// labeling today's and yesterday's buckets specially. Buckets appear in
// first-encountered order; records without a parseable date are skipped.
func GroupByDay(txs []core.Transaction, now time.Time) []core.DayGroup {
	idx := make(map[string]int)
	groups := make([]core.DayGroup, 0)

	today := dayOf(now)
	yesterday := today.AddDate(0, 0, -1)

	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		day := dayOf(t.Date)
		key := day.Format("2006-01-02")
		i, ok := idx[key]
		if !ok {
			label := day.Format(dayLabelLayout)
			if day.Equal(today) {
				label = "Today"
			} else if day.Equal(yesterday) {
				label = "Yesterday"
			}
			i = len(groups)
			idx[key] = i
			groups = append(groups, core.DayGroup{Label: label, Date: day})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
