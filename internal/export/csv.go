// Package export renders expense listings in interchange formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fintrack/internal/core"
)

// Header is the first record of every CSV export.
var Header = []string{"Date", "Amount", "Category", "Description"}

// WriteCSV writes expenses to w as RFC 4180 CSV, header first.
// Amounts are rendered with two decimals.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range expenses {
		record := []string{
			e.Date.String(),
			core.FormatAmount(e.Amount),
			e.Category,
			e.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the suggested attachment name for an export taken on day.
func Filename(day core.Date) string {
	return fmt.Sprintf("expenses-%s.csv", day.String())
}
