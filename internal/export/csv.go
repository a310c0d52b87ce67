// Package export renders filtered transaction sets to downloadable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"finview/internal/core"
)

// csvHeader is the fixed column order of the transactions export.
var csvHeader = []string{
	"Type", "Amount", "Description", "Category", "Division",
	"Account From", "Account To", "Date",
}

// dateLayout is how transaction timestamps appear in the export.
const dateLayout = "2006-01-02 15:04:05"

// WriteCSV writes the header row plus one row per transaction, in input
// order. Fields containing commas or quotes are escaped per RFC 4180; the
// column order and row count are otherwise exactly what the caller passed.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		date := ""
		if !t.Date.IsZero() {
			date = t.Date.Format(dateLayout)
		}
		row := []string{
			string(t.Type),
			t.Amount.String(),
			t.Description,
			t.Category,
			t.Division,
			t.AccountFrom,
			t.AccountTo,
			date,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
