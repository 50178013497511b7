package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"fintrack/internal/core"
)

var (
	success = color.New(color.FgGreen, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow, color.Bold).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
)

func disableColor() {
	color.NoColor = true
}

func statusColor(s core.BudgetStatus) func(...any) string {
	switch s {
	case core.StatusOverBudget:
		return failure
	case core.StatusWarning:
		return warning
	default:
		return success
	}
}

func renderBudgetStatus(w io.Writer, year, month int, snap core.BudgetSnapshot) {
	fmt.Fprintf(w, "%s %04d-%02d\n", heading("BUDGET"), year, month)
	fmt.Fprintf(w, "  Limit      %s\n", core.FormatAmount(snap.MonthlyLimit))
	fmt.Fprintf(w, "  Spent      %s\n", core.FormatAmount(snap.TotalSpent))
	fmt.Fprintf(w, "  Remaining  %s\n", core.FormatAmount(snap.Remaining))
	fmt.Fprintf(w, "  Used       %s%%\n", snap.DisplayPercentage().StringFixed(2))
	fmt.Fprintf(w, "  Status     %s\n", statusColor(snap.Status)(string(snap.Status)))
}

func renderRecurring(w io.Writer, defs []core.RecurringExpense) error {
	if len(defs) == 0 {
		fmt.Fprintln(w, muted("No recurring expenses."))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAMOUNT\tCATEGORY\tFREQUENCY\tNEXT\tEND\tACTIVE\tDESCRIPTION")
	for _, d := range defs {
		end := "-"
		if d.HasEndDate() {
			end = d.EndDate.String()
		}
		active := "yes"
		if !d.Active {
			active = "no"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, core.FormatAmount(d.Amount), d.Category, d.Frequency, d.NextOccurrence, end, active, d.Description)
	}
	return tw.Flush()
}
