package storage

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Row types mirror the tables. Dates are YYYY-MM-DD text and timestamps are
// RFC 3339 text in UTC.
type (
	CategoryRow struct {
		ID          int64
		Name        string
		Description string
		IsDefault   bool
		CreatedAt   string
		UpdatedAt   string
	}

	ExpenseRow struct {
		ID           int64
		Amount       decimal.Decimal
		CategoryID   int64
		CategoryName string
		Date         string
		Description  string
		RecurringID  sql.NullInt64
		Version      int64
		SyncStatus   string
		CreatedAt    string
		UpdatedAt    string
	}

	RecurringExpenseRow struct {
		ID             int64
		Amount         decimal.Decimal
		CategoryID     int64
		CategoryName   string
		Description    string
		Frequency      string
		StartDate      string
		EndDate        sql.NullString
		NextOccurrence string
		Active         bool
		LastFired      sql.NullString
		CreatedAt      string
		UpdatedAt      string
	}

	BudgetRow struct {
		ID           int64
		MonthlyLimit decimal.Decimal
		CreatedAt    string
		UpdatedAt    string
	}

	// PendingSyncExpense is an expense not yet mirrored to the spreadsheet.
	PendingSyncExpense struct {
		ID        int64
		Version   int64
		CreatedAt time.Time
	}
)

const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)
