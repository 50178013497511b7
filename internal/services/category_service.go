package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.IsDefault = false
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, c)
	if errors.Is(err, storage.ErrDuplicate) {
		return core.Category{}, fmt.Errorf("%w: category %q already exists", ErrConflict, c.Name)
	}
	return created, err
}

// Update renames or re-describes a user category. Default categories are fixed.
func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	if existing.IsDefault {
		return core.Category{}, fmt.Errorf("%w: %s", ErrDefaultCategory, existing.Name)
	}

	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	updated, err := s.store.UpdateCategory(ctx, c)
	if errors.Is(err, storage.ErrDuplicate) {
		return core.Category{}, fmt.Errorf("%w: category %q already exists", ErrConflict, c.Name)
	}
	return updated, err
}

// Delete removes a user category that no expense or recurring expense references.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return fmt.Errorf("%w: %s", ErrDefaultCategory, existing.Name)
	}

	used, err := s.store.CategoryUsage(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("%w: %s is referenced %d times", ErrCategoryInUse, existing.Name, used)
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted", "id", id, "name", existing.Name)
	return nil
}
