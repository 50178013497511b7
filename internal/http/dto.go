package http

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Amounts are read as JSON numbers or strings and written as two-decimal
// strings. Dates travel as YYYY-MM-DD.

type expenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  int64           `json:"categoryId"`
	Category    string          `json:"category"`
	Date        core.Date       `json:"date"`
	Description string          `json:"description"`
}

func (req expenseRequest) toExpense(id int64) core.Expense {
	return core.Expense{
		ID:          id,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Category:    sanitizeInput(req.Category),
		Date:        req.Date,
		Description: sanitizeInput(req.Description),
	}
}

type expenseResponse struct {
	ID          int64     `json:"id"`
	Amount      string    `json:"amount"`
	CategoryID  int64     `json:"categoryId"`
	Category    string    `json:"category"`
	Date        core.Date `json:"date"`
	Description string    `json:"description"`
	RecurringID *int64    `json:"recurringId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Amount:      core.FormatAmount(e.Amount),
		CategoryID:  e.CategoryID,
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.RecurringID != 0 {
		id := e.RecurringID
		resp.RecurringID = &id
	}
	return resp
}

func newExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, newExpenseResponse(e))
	}
	return out
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsDefault:   c.IsDefault,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type recurringRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  int64           `json:"categoryId"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Frequency   string          `json:"frequency"`
	StartDate   core.Date       `json:"startDate"`
	EndDate     core.Date       `json:"endDate"`
}

func (req recurringRequest) toRecurring(id int64) core.RecurringExpense {
	return core.RecurringExpense{
		ID:          id,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Frequency:   core.Frequency(req.Frequency),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
}

type recurringResponse struct {
	ID             int64          `json:"id"`
	Amount         string         `json:"amount"`
	CategoryID     int64          `json:"categoryId"`
	Category       string         `json:"category"`
	Description    string         `json:"description"`
	Frequency      core.Frequency `json:"frequency"`
	StartDate      core.Date      `json:"startDate"`
	EndDate        core.Date      `json:"endDate"`
	NextOccurrence core.Date      `json:"nextOccurrence"`
	LastFired      core.Date      `json:"lastFired"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func newRecurringResponse(re core.RecurringExpense) recurringResponse {
	return recurringResponse{
		ID:             re.ID,
		Amount:         core.FormatAmount(re.Amount),
		CategoryID:     re.CategoryID,
		Category:       re.Category,
		Description:    re.Description,
		Frequency:      re.Frequency,
		StartDate:      re.StartDate,
		EndDate:        re.EndDate,
		NextOccurrence: re.NextOccurrence,
		LastFired:      re.LastFired,
		Active:         re.Active,
		CreatedAt:      re.CreatedAt,
		UpdatedAt:      re.UpdatedAt,
	}
}

type previewResponse struct {
	ID    int64       `json:"id"`
	Dates []core.Date `json:"dates"`
}

type processResponse struct {
	Date    core.Date `json:"date"`
	Created int       `json:"created"`
}

type budgetRequest struct {
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
}

type budgetResponse struct {
	ID           int64     `json:"id"`
	MonthlyLimit string    `json:"monthlyLimit"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		MonthlyLimit: core.FormatAmount(b.MonthlyLimit),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

type budgetStatusResponse struct {
	MonthlyLimit   string            `json:"monthlyLimit"`
	TotalSpent     string            `json:"totalSpent"`
	Remaining      string            `json:"remaining"`
	PercentageUsed string            `json:"percentageUsed"`
	Status         core.BudgetStatus `json:"status"`
}

func newBudgetStatusResponse(s core.BudgetSnapshot) budgetStatusResponse {
	return budgetStatusResponse{
		MonthlyLimit:   core.FormatAmount(s.MonthlyLimit),
		TotalSpent:     core.FormatAmount(s.TotalSpent),
		Remaining:      core.FormatAmount(s.Remaining),
		PercentageUsed: s.DisplayPercentage().StringFixed(2),
		Status:         s.Status,
	}
}

type categoryAmountResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

func newCategoryAmounts(rows []core.CategoryAmount) []categoryAmountResponse {
	out := make([]categoryAmountResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryAmountResponse{Category: r.Name, Total: core.FormatAmount(r.Amount)})
	}
	return out
}

type monthlySummaryResponse struct {
	Year       int                      `json:"year"`
	Month      int                      `json:"month"`
	Total      string                   `json:"total"`
	ByCategory []categoryAmountResponse `json:"byCategory"`
}

func newMonthlySummaryResponse(ov core.MonthOverview) monthlySummaryResponse {
	return monthlySummaryResponse{
		Year:       ov.Year,
		Month:      ov.Month,
		Total:      core.FormatAmount(ov.Total),
		ByCategory: newCategoryAmounts(ov.ByCategory),
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
