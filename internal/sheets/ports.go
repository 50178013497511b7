// Package sheets defines the spreadsheet mirror that the sync worker keeps
// in step with the local database.
package sheets

import (
	"context"
	"strconv"

	"fintrack/internal/core"
)

// Header is the first row of the mirrored sheet.
var Header = []string{"Date", "Amount", "Category", "Description", "ID"}

// Ports for outbound adapters.
type (
	// ExpenseWriter inserts or overwrites the row of an expense, keyed by its ID.
	ExpenseWriter interface {
		Upsert(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseDeleter removes the row of an expense. Deleting a missing row is not an error.
	ExpenseDeleter interface {
		Delete(ctx context.Context, id int64) error
	}

	Mirror interface {
		ExpenseWriter
		ExpenseDeleter
	}
)

// Row is the spreadsheet form of an expense.
type Row struct {
	Date        string
	Amount      string
	Category    string
	Description string
	ID          int64
}

func RowFromExpense(e core.Expense) Row {
	return Row{
		Date:        e.Date.String(),
		Amount:      core.FormatAmount(e.Amount),
		Category:    e.Category,
		Description: e.Description,
		ID:          e.ID,
	}
}

// Values returns the cells in column order.
func (r Row) Values() []any {
	return []any{r.Date, r.Amount, r.Category, r.Description, strconv.FormatInt(r.ID, 10)}
}
