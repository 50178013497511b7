package storage

import (
	"context"
	"database/sql"
	"strings"
)

// ----- categories -----

const categoryColumns = `id, name, description, is_default, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (CategoryRow, error) {
	var c CategoryRow
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name COLLATE NOCASE`

func (q *Queries) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (CategoryRow, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const getCategoryByName = `SELECT ` + categoryColumns + ` FROM categories WHERE name = ? COLLATE NOCASE`

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (CategoryRow, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategoryByName, name))
}

type CreateCategoryParams struct {
	Name        string
	Description string
	IsDefault   bool
	Now         string
}

const createCategory = `INSERT INTO categories (name, description, is_default, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createCategory, arg.Name, arg.Description, arg.IsDefault, arg.Now, arg.Now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Description string
	Now         string
}

const updateCategory = `UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCategory, arg.Name, arg.Description, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countCategoryUsage = `SELECT
    (SELECT COUNT(*) FROM expenses WHERE category_id = ?1) +
    (SELECT COUNT(*) FROM recurring_expenses WHERE category_id = ?1)`

func (q *Queries) CountCategoryUsage(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCategoryUsage, id).Scan(&n)
	return n, err
}

// ----- expenses -----

const expenseSelect = `SELECT e.id, e.amount, e.category_id, c.name, e.date, e.description,
       e.recurring_id, e.version, e.sync_status, e.created_at, e.updated_at
FROM expenses e
JOIN categories c ON c.id = e.category_id`

func scanExpense(row interface{ Scan(...any) error }) (ExpenseRow, error) {
	var e ExpenseRow
	err := row.Scan(&e.ID, &e.Amount, &e.CategoryID, &e.CategoryName, &e.Date, &e.Description,
		&e.RecurringID, &e.Version, &e.SyncStatus, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

type CreateExpenseParams struct {
	Amount      string
	CategoryID  int64
	Date        string
	Description string
	RecurringID sql.NullInt64
	Now         string
}

const createExpense = `INSERT INTO expenses (amount, category_id, date, description, recurring_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createExpense,
		arg.Amount, arg.CategoryID, arg.Date, arg.Description, arg.RecurringID, arg.Now, arg.Now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getExpense = expenseSelect + ` WHERE e.id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseRow, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

type UpdateExpenseParams struct {
	ID          int64
	Amount      string
	CategoryID  int64
	Date        string
	Description string
	Now         string
}

// Updating bumps the version and queues the row for another sync.
const updateExpense = `UPDATE expenses
SET amount = ?, category_id = ?, date = ?, description = ?, updated_at = ?,
    version = version + 1, sync_status = 'pending'
WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense,
		arg.Amount, arg.CategoryID, arg.Date, arg.Description, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type ListExpensesParams struct {
	From       string // inclusive, empty for no lower bound
	To         string // inclusive, empty for no upper bound
	Categories []string
}

// ListExpenses builds its WHERE clause from the non-empty parameters.
// Results are ordered newest first.
func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]ExpenseRow, error) {
	var (
		where []string
		args  []any
	)
	if arg.From != "" {
		where = append(where, "e.date >= ?")
		args = append(args, arg.From)
	}
	if arg.To != "" {
		where = append(where, "e.date <= ?")
		args = append(args, arg.To)
	}
	if len(arg.Categories) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(arg.Categories)), ",")
		where = append(where, "c.name IN ("+placeholders+")")
		for _, name := range arg.Categories {
			args = append(args, name)
		}
	}

	query := expenseSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.date DESC, e.id DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const getPendingSyncExpenses = `SELECT id, version, created_at FROM expenses
WHERE sync_status = 'pending'
ORDER BY created_at
LIMIT ?`

type PendingSyncRow struct {
	ID        int64
	Version   int64
	CreatedAt string
}

func (q *Queries) GetPendingSyncExpenses(ctx context.Context, limit int64) ([]PendingSyncRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncExpenses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PendingSyncRow
	for rows.Next() {
		var p PendingSyncRow
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const markExpenseSynced = `UPDATE expenses SET sync_status = 'synced', synced_at = ? WHERE id = ?`

func (q *Queries) MarkExpenseSynced(ctx context.Context, id int64, now string) error {
	_, err := q.db.ExecContext(ctx, markExpenseSynced, now, id)
	return err
}

const markExpenseSyncError = `UPDATE expenses SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkExpenseSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markExpenseSyncError, id)
	return err
}

// ----- recurring expenses -----

const recurringSelect = `SELECT r.id, r.amount, r.category_id, c.name, r.description, r.frequency,
       r.start_date, r.end_date, r.next_occurrence, r.active, r.last_fired,
       r.created_at, r.updated_at
FROM recurring_expenses r
JOIN categories c ON c.id = r.category_id`

func scanRecurring(row interface{ Scan(...any) error }) (RecurringExpenseRow, error) {
	var r RecurringExpenseRow
	err := row.Scan(&r.ID, &r.Amount, &r.CategoryID, &r.CategoryName, &r.Description, &r.Frequency,
		&r.StartDate, &r.EndDate, &r.NextOccurrence, &r.Active, &r.LastFired,
		&r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (q *Queries) listRecurring(ctx context.Context, query string, args ...any) ([]RecurringExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringExpenseRow
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type RecurringParams struct {
	ID             int64
	Amount         string
	CategoryID     int64
	Description    string
	Frequency      string
	StartDate      string
	EndDate        sql.NullString
	NextOccurrence string
	Active         bool
	LastFired      sql.NullString
	Now            string
}

const createRecurring = `INSERT INTO recurring_expenses
    (amount, category_id, description, frequency, start_date, end_date, next_occurrence, active, last_fired, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRecurring(ctx context.Context, arg RecurringParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRecurring,
		arg.Amount, arg.CategoryID, arg.Description, arg.Frequency, arg.StartDate, arg.EndDate,
		arg.NextOccurrence, arg.Active, arg.LastFired, arg.Now, arg.Now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getRecurring = recurringSelect + ` WHERE r.id = ?`

func (q *Queries) GetRecurring(ctx context.Context, id int64) (RecurringExpenseRow, error) {
	return scanRecurring(q.db.QueryRowContext(ctx, getRecurring, id))
}

const listRecurring = recurringSelect + ` ORDER BY r.next_occurrence, r.id`

func (q *Queries) ListRecurring(ctx context.Context) ([]RecurringExpenseRow, error) {
	return q.listRecurring(ctx, listRecurring)
}

const listActiveRecurring = recurringSelect + ` WHERE r.active = 1 ORDER BY r.next_occurrence, r.id`

func (q *Queries) ListActiveRecurring(ctx context.Context) ([]RecurringExpenseRow, error) {
	return q.listRecurring(ctx, listActiveRecurring)
}

const listDueRecurring = recurringSelect + `
WHERE r.active = 1 AND r.next_occurrence <= ?
ORDER BY r.next_occurrence, r.id`

func (q *Queries) ListDueRecurring(ctx context.Context, today string) ([]RecurringExpenseRow, error) {
	return q.listRecurring(ctx, listDueRecurring, today)
}

const updateRecurring = `UPDATE recurring_expenses
SET amount = ?, category_id = ?, description = ?, frequency = ?, start_date = ?, end_date = ?,
    next_occurrence = ?, active = ?, last_fired = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateRecurring(ctx context.Context, arg RecurringParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRecurring,
		arg.Amount, arg.CategoryID, arg.Description, arg.Frequency, arg.StartDate, arg.EndDate,
		arg.NextOccurrence, arg.Active, arg.LastFired, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteRecurring = `DELETE FROM recurring_expenses WHERE id = ?`

func (q *Queries) DeleteRecurring(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRecurring, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ----- budget -----

const getLatestBudget = `SELECT id, monthly_limit, created_at, updated_at FROM budgets
ORDER BY updated_at DESC, id DESC
LIMIT 1`

func (q *Queries) GetLatestBudget(ctx context.Context) (BudgetRow, error) {
	var b BudgetRow
	err := q.db.QueryRowContext(ctx, getLatestBudget).Scan(&b.ID, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const createBudget = `INSERT INTO budgets (monthly_limit, created_at, updated_at) VALUES (?, ?, ?)`

func (q *Queries) CreateBudget(ctx context.Context, limit, now string) (int64, error) {
	res, err := q.db.ExecContext(ctx, createBudget, limit, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateBudget = `UPDATE budgets SET monthly_limit = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, id int64, limit, now string) error {
	_, err := q.db.ExecContext(ctx, updateBudget, limit, now, id)
	return err
}
