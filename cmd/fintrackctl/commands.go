package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

var (
	flagProcessDate string
	flagBudgetMonth string
	flagActiveOnly  bool
	flagExportOut   string
	flagExportFrom  string
	flagExportTo    string
	flagExportCats  []string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Materialize due recurring expenses once",
	Args:  cobra.NoArgs,
	RunE:  runProcess,
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Inspect or set the monthly budget",
}

var budgetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spending against the monthly limit",
	Args:  cobra.NoArgs,
	RunE:  runBudgetStatus,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the monthly spending limit",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetSet,
}

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Work with recurring expenses",
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring expenses",
	Args:  cobra.NoArgs,
	RunE:  runRecurringList,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	processCmd.Flags().StringVar(&flagProcessDate, "date", "", "Process as of this date, YYYY-MM-DD (default today)")

	budgetStatusCmd.Flags().StringVar(&flagBudgetMonth, "month", "", "Month to evaluate, YYYY-MM (default current)")
	budgetCmd.AddCommand(budgetStatusCmd, budgetSetCmd)

	recurringListCmd.Flags().BoolVar(&flagActiveOnly, "active", false, "Only active series")
	recurringCmd.AddCommand(recurringListCmd)

	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default expenses-<today>.csv, - for stdout)")
	exportCmd.Flags().StringVar(&flagExportFrom, "from", "", "First date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&flagExportTo, "to", "", "Last date, YYYY-MM-DD")
	exportCmd.Flags().StringSliceVar(&flagExportCats, "category", nil, "Category name (repeatable)")

	rootCmd.AddCommand(processCmd, budgetCmd, recurringCmd, exportCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	day := core.DateOf(now())
	if flagProcessDate != "" {
		d, err := core.ParseDate(flagProcessDate)
		if err != nil {
			return err
		}
		day = d
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	created, err := s.Processor.ProcessDue(cmd.Context(), day)
	if err != nil {
		return err
	}
	if created == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s nothing due on %s\n", muted("•"), day)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s created %d expense(s) for %s\n", success("✓"), created, day)
	return nil
}

// parseMonth reads YYYY-MM, defaulting to the month of ref.
func parseMonth(s string, ref time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return ref, nil
	}
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	month, err := parseMonth(flagBudgetMonth, now())
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	snap, err := s.Budget.Status(cmd.Context(), month)
	if err != nil {
		return err
	}
	renderBudgetStatus(cmd.OutOrStdout(), month.Year(), int(month.Month()), snap)
	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	limit, err := core.ParseAmount(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidBudgetLimit, args[0])
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	b, err := s.Budget.Set(cmd.Context(), limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s monthly limit set to %s\n", success("✓"), core.FormatAmount(b.MonthlyLimit))
	return nil
}

func runRecurringList(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	defs, err := s.Recurring.List(cmd.Context(), flagActiveOnly)
	if err != nil {
		return err
	}
	return renderRecurring(cmd.OutOrStdout(), defs)
}

func exportFilter() (core.ExpenseFilter, error) {
	var (
		f   core.ExpenseFilter
		err error
	)
	if flagExportFrom != "" {
		if f.From, err = core.ParseDate(flagExportFrom); err != nil {
			return f, err
		}
	}
	if flagExportTo != "" {
		if f.To, err = core.ParseDate(flagExportTo); err != nil {
			return f, err
		}
	}
	f.Categories = flagExportCats
	return f, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	filter, err := exportFilter()
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	expenses, err := s.Expenses.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := flagExportOut
	if out == "" {
		out = export.Filename(core.DateOf(now()))
	}
	if out == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), expenses)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := writeAndClose(f, expenses); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %d expense(s) to %s\n", success("✓"), len(expenses), out)
	return nil
}

func writeAndClose(f io.WriteCloser, expenses []core.Expense) error {
	if err := export.WriteCSV(f, expenses); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
