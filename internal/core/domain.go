package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Biweekly  Frequency = "BIWEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

const (
	// DateLayout is the wire and storage format of a calendar date.
	DateLayout = "2006-01-02"

	MaxDescriptionLength         = 500
	MaxCategoryNameLength        = 50
	MaxCategoryDescriptionLength = 255
)

type (
	// Frequency is the closed set of recurrence periods.
	Frequency string

	// Date is a calendar date without time of day, always stored in UTC.
	Date struct {
		time.Time
	}

	Category struct {
		ID          int64
		Name        string
		Description string
		IsDefault   bool // default categories cannot be renamed or deleted
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Expense struct {
		ID          int64
		Amount      decimal.Decimal
		CategoryID  int64
		Category    string // category name, filled on reads
		Date        Date
		Description string
		RecurringID int64 // 0 when entered manually
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// RecurringExpense is a template that materializes an Expense on every
	// occurrence date of its series.
	RecurringExpense struct {
		ID             int64
		Amount         decimal.Decimal
		CategoryID     int64
		Category       string
		Description    string
		Frequency      Frequency
		StartDate      Date
		EndDate        Date // zero means open-ended
		NextOccurrence Date
		Active         bool
		LastFired      Date // zero until the first occurrence is materialized
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	Budget struct {
		ID           int64
		MonthlyLimit decimal.Decimal
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// ExpenseFilter narrows expense listings. Zero values mean "no constraint".
	ExpenseFilter struct {
		Categories []string
		From       Date
		To         Date
	}
)

var (
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrInvalidBudgetLimit  = errors.New("monthly limit must be greater than zero")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEndBeforeStart      = errors.New("end date must not be before start date")
	ErrDescriptionTooLong  = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrEmptyCategoryName   = errors.New("empty category name")
	ErrCategoryNameTooLong = fmt.Errorf("category name too long (max %d characters)", MaxCategoryNameLength)
	ErrCategoryDescTooLong = fmt.Errorf("category description too long (max %d characters)", MaxCategoryDescriptionLength)
	ErrMissingCategory     = errors.New("missing category")
	ErrNotFound            = errors.New("not found")
)

// Frequencies lists every supported frequency in ascending period order.
func Frequencies() []Frequency {
	return []Frequency{Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly}
}

// ParseFrequency accepts any letter case and surrounding whitespace.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, string(f))
	}
}

func (f Frequency) String() string {
	return string(f)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day of t, keeping its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// IsEmpty returns true if the date is zero (used for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d falls on an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d falls on a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// MonthBounds returns the first and last day of the date's month.
func (d Date) MonthBounds() (Date, Date) {
	first := NewDate(d.Year(), int(d.Month()), 1)
	last := NewDate(d.Year(), int(d.Month())+1, 0)
	return first, last
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func validateDescription(desc string) error {
	if len([]rune(desc)) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	if len([]rune(name)) > MaxCategoryNameLength {
		return ErrCategoryNameTooLong
	}
	if len([]rune(c.Description)) > MaxCategoryDescriptionLength {
		return ErrCategoryDescTooLong
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return validateDescription(e.Description)
}

func (re RecurringExpense) Validate() error {
	if err := validateAmount(re.Amount); err != nil {
		return err
	}
	if re.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if err := re.Frequency.Validate(); err != nil {
		return err
	}
	if err := re.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if !re.EndDate.IsZero() && re.EndDate.Before(re.StartDate) {
		return ErrEndBeforeStart
	}
	return validateDescription(re.Description)
}

// HasEndDate reports whether the series is bounded.
func (re RecurringExpense) HasEndDate() bool {
	return !re.EndDate.IsZero()
}

// HasFired reports whether at least one occurrence was materialized.
func (re RecurringExpense) HasFired() bool {
	return !re.LastFired.IsZero()
}

func (b Budget) Validate() error {
	if !b.MonthlyLimit.IsPositive() {
		return ErrInvalidBudgetLimit
	}
	return nil
}
