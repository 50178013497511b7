package services

import (
	"errors"

	"fintrack/internal/core"
)

var (
	ErrConflict        = errors.New("conflict")
	ErrDefaultCategory = errors.New("default categories cannot be modified")
	ErrCategoryInUse   = errors.New("category is in use")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNoBudget        = errors.New("no budget configured")
)

var validationErrors = []error{
	core.ErrInvalidFrequency,
	core.ErrInvalidBudgetLimit,
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrEndBeforeStart,
	core.ErrDescriptionTooLong,
	core.ErrEmptyCategoryName,
	core.ErrCategoryNameTooLong,
	core.ErrCategoryDescTooLong,
	core.ErrMissingCategory,
	ErrUnknownCategory,
}

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
