package services

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
)

// CategoryService manages categories and guards the link between a category
// and the transactions that reference it.
type CategoryService struct {
	store ledger.Store
	views Invalidator
}

func NewCategoryService(store ledger.Store, views Invalidator) *CategoryService {
	return &CategoryService{store: store, views: views}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, in.Category())
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		log.FieldCategoryID, created.ID,
		log.FieldType, string(created.Type),
		"name", created.Name)
	s.invalidate()
	return created, nil
}

// Update rewrites a category. Changing its type is refused while any
// transaction references it.
func (s *CategoryService) Update(ctx context.Context, id int64, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}

	if in.Type != existing.Type {
		n, err := s.store.CountByCategory(ctx, id)
		if err != nil {
			return core.Category{}, fmt.Errorf("count transactions of category %d: %w", id, err)
		}
		if n > 0 {
			return core.Category{}, fmt.Errorf("category %d has %d transactions: %w", id, n, ErrCategoryTypeLocked)
		}
	}

	c := in.Category()
	c.ID = existing.ID
	c.IsDefault = existing.IsDefault

	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Category updated",
		log.FieldCategoryID, updated.ID,
		log.FieldType, string(updated.Type))
	s.invalidate()
	return updated, nil
}

// Delete removes a category that no transaction references.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return fmt.Errorf("get category %d: %w", id, err)
	}

	n, err := s.store.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count transactions of category %d: %w", id, err)
	}
	if n > 0 {
		return fmt.Errorf("category %d has %d transactions: %w", id, n, ledger.ErrCategoryInUse)
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	s.invalidate()
	return nil
}

func (s *CategoryService) invalidate() {
	if s.views != nil {
		s.views.Invalidate()
	}
}
