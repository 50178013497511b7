package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate value")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func fromNullDate(s sql.NullString) core.Date {
	if !s.Valid {
		return core.Date{}
	}
	return parseDate(s.String)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return core.ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// ----- categories -----

func categoryFromRow(c CategoryRow) core.Category {
	return core.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsDefault:   c.IsDefault,
		CreatedAt:   parseTimestamp(c.CreatedAt),
		UpdatedAt:   parseTimestamp(c.UpdatedAt),
	}
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = categoryFromRow(c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, translate(err))
	}
	return categoryFromRow(row), nil
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	row, err := r.queries.GetCategoryByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %q: %w", name, translate(err))
	}
	return categoryFromRow(row), nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	id, err := r.queries.CreateCategory(ctx, CreateCategoryParams{
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		IsDefault:   c.IsDefault,
		Now:         r.timestamp(),
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", translate(err))
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", id, "name", c.Name)
	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	n, err := r.queries.UpdateCategory(ctx, UpdateCategoryParams{
		ID:          c.ID,
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		Now:         r.timestamp(),
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, translate(err))
	}
	if n == 0 {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, core.ErrNotFound)
	}
	return r.GetCategory(ctx, c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, translate(err))
	}
	if n == 0 {
		return fmt.Errorf("delete category %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// CategoryUsage counts the expenses and recurring definitions referencing a category.
func (r *SQLiteRepository) CategoryUsage(ctx context.Context, id int64) (int64, error) {
	n, err := r.queries.CountCategoryUsage(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count category usage: %w", err)
	}
	return n, nil
}

// ----- expenses -----

func expenseFromRow(e ExpenseRow) core.Expense {
	return core.Expense{
		ID:          e.ID,
		Amount:      e.Amount,
		CategoryID:  e.CategoryID,
		Category:    e.CategoryName,
		Date:        parseDate(e.Date),
		Description: e.Description,
		RecurringID: e.RecurringID.Int64,
		CreatedAt:   parseTimestamp(e.CreatedAt),
		UpdatedAt:   parseTimestamp(e.UpdatedAt),
	}
}

func createExpenseParams(e core.Expense, now string) CreateExpenseParams {
	return CreateExpenseParams{
		Amount:      core.FormatAmount(e.Amount),
		CategoryID:  e.CategoryID,
		Date:        e.Date.String(),
		Description: e.Description,
		RecurringID: sql.NullInt64{Int64: e.RecurringID, Valid: e.RecurringID > 0},
		Now:         now,
	}
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	id, err := r.queries.CreateExpense(ctx, createExpenseParams(e, r.timestamp()))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", translate(err))
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount", core.FormatAmount(e.Amount),
		"date", e.Date.String())

	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, translate(err))
	}
	return expenseFromRow(row), nil
}

// GetExpenseVersion returns the sync version of an expense.
func (r *SQLiteRepository) GetExpenseVersion(ctx context.Context, id int64) (int64, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("get expense %d: %w", id, translate(err))
	}
	return row.Version, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	n, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		ID:          e.ID,
		Amount:      core.FormatAmount(e.Amount),
		CategoryID:  e.CategoryID,
		Date:        e.Date.String(),
		Description: e.Description,
		Now:         r.timestamp(),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, translate(err))
	}
	if n == 0 {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, core.ErrNotFound)
	}
	return r.GetExpense(ctx, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, translate(err))
	}
	if n == 0 {
		return fmt.Errorf("delete expense %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx, ListExpensesParams{
		From:       filter.From.String(),
		To:         filter.To.String(),
		Categories: filter.Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, e := range rows {
		out[i] = expenseFromRow(e)
	}
	return out, nil
}

// GetPendingSyncExpenses returns expenses that need to be synced to Google Sheets
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error) {
	rows, err := r.queries.GetPendingSyncExpenses(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	out := make([]PendingSyncExpense, len(rows))
	for i, p := range rows {
		out[i] = PendingSyncExpense{ID: p.ID, Version: p.Version, CreatedAt: parseTimestamp(p.CreatedAt)}
	}
	return out, nil
}

// MarkSynced marks an expense as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkExpenseSynced(ctx, id, r.timestamp()); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an expense as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkExpenseSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

// ----- recurring expenses -----

func recurringFromRow(r RecurringExpenseRow) core.RecurringExpense {
	return core.RecurringExpense{
		ID:             r.ID,
		Amount:         r.Amount,
		CategoryID:     r.CategoryID,
		Category:       r.CategoryName,
		Description:    r.Description,
		Frequency:      core.Frequency(r.Frequency),
		StartDate:      parseDate(r.StartDate),
		EndDate:        fromNullDate(r.EndDate),
		NextOccurrence: parseDate(r.NextOccurrence),
		Active:         r.Active,
		LastFired:      fromNullDate(r.LastFired),
		CreatedAt:      parseTimestamp(r.CreatedAt),
		UpdatedAt:      parseTimestamp(r.UpdatedAt),
	}
}

func recurringParams(re core.RecurringExpense, now string) RecurringParams {
	return RecurringParams{
		ID:             re.ID,
		Amount:         core.FormatAmount(re.Amount),
		CategoryID:     re.CategoryID,
		Description:    re.Description,
		Frequency:      string(re.Frequency),
		StartDate:      re.StartDate.String(),
		EndDate:        nullDate(re.EndDate),
		NextOccurrence: re.NextOccurrence.String(),
		Active:         re.Active,
		LastFired:      nullDate(re.LastFired),
		Now:            now,
	}
}

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	id, err := r.queries.CreateRecurring(ctx, recurringParams(re, r.timestamp()))
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("create recurring expense: %w", translate(err))
	}
	slog.InfoContext(ctx, "Recurring expense saved to SQLite",
		"id", id,
		"frequency", re.Frequency,
		"next_occurrence", re.NextOccurrence.String())
	return r.GetRecurring(ctx, id)
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id int64) (core.RecurringExpense, error) {
	row, err := r.queries.GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("get recurring expense %d: %w", id, translate(err))
	}
	return recurringFromRow(row), nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, activeOnly bool) ([]core.RecurringExpense, error) {
	var (
		rows []RecurringExpenseRow
		err  error
	)
	if activeOnly {
		rows, err = r.queries.ListActiveRecurring(ctx)
	} else {
		rows, err = r.queries.ListRecurring(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	return recurringList(rows), nil
}

// ListDueRecurring returns active definitions whose next occurrence is on or before today.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, today core.Date) ([]core.RecurringExpense, error) {
	rows, err := r.queries.ListDueRecurring(ctx, today.String())
	if err != nil {
		return nil, fmt.Errorf("list due recurring expenses: %w", err)
	}
	return recurringList(rows), nil
}

func recurringList(rows []RecurringExpenseRow) []core.RecurringExpense {
	out := make([]core.RecurringExpense, len(rows))
	for i, row := range rows {
		out[i] = recurringFromRow(row)
	}
	return out
}

// SaveRecurring overwrites every mutable column of a definition.
func (r *SQLiteRepository) SaveRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	n, err := r.queries.UpdateRecurring(ctx, recurringParams(re, r.timestamp()))
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense %d: %w", re.ID, translate(err))
	}
	if n == 0 {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense %d: %w", re.ID, core.ErrNotFound)
	}
	return r.GetRecurring(ctx, re.ID)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteRecurring(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recurring expense %d: %w", id, translate(err))
	}
	if n == 0 {
		return fmt.Errorf("delete recurring expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// FireOccurrence stores the materialized expense and the advanced definition
// in one transaction, so an occurrence is never recorded without its
// bookkeeping or the other way round.
func (r *SQLiteRepository) FireOccurrence(ctx context.Context, e core.Expense, def core.RecurringExpense) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	now := r.timestamp()

	id, err := q.CreateExpense(ctx, createExpenseParams(e, now))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create occurrence expense: %w", translate(err))
	}
	n, err := q.UpdateRecurring(ctx, recurringParams(def, now))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update recurring expense %d: %w", def.ID, translate(err))
	}
	if n == 0 {
		return core.Expense{}, fmt.Errorf("update recurring expense %d: %w", def.ID, core.ErrNotFound)
	}
	row, err := q.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("reload occurrence expense: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit occurrence: %w", err)
	}
	return expenseFromRow(row), nil
}

// ----- budget -----

func budgetFromRow(b BudgetRow) core.Budget {
	return core.Budget{
		ID:           b.ID,
		MonthlyLimit: b.MonthlyLimit,
		CreatedAt:    parseTimestamp(b.CreatedAt),
		UpdatedAt:    parseTimestamp(b.UpdatedAt),
	}
}

// GetBudget returns the most recently updated budget.
func (r *SQLiteRepository) GetBudget(ctx context.Context) (core.Budget, error) {
	row, err := r.queries.GetLatestBudget(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", translate(err))
	}
	return budgetFromRow(row), nil
}

// SaveBudget updates the single budget row, creating it on first use.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := r.timestamp()
	limit := core.FormatAmount(b.MonthlyLimit)

	existing, err := r.queries.GetLatestBudget(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := r.queries.CreateBudget(ctx, limit, now); err != nil {
			return core.Budget{}, fmt.Errorf("create budget: %w", err)
		}
	case err != nil:
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	default:
		if err := r.queries.UpdateBudget(ctx, existing.ID, limit, now); err != nil {
			return core.Budget{}, fmt.Errorf("update budget: %w", err)
		}
	}

	slog.InfoContext(ctx, "Budget saved to SQLite", "monthly_limit", limit)
	return r.GetBudget(ctx)
}
