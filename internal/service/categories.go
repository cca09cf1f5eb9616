package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
)

// CategoryInput carries the fields of a new category
type CategoryInput struct {
	Name        string
	Description string
}

// BulkCategoriesResult holds the created categories and the per-item failures of a bulk create
type BulkCategoriesResult struct {
	Created []models.Category
	Errors  []string
}

// ListCategories returns all categories sorted by name
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category with a unique name
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(ErrInvalidInput, "Category name is required")
	}

	_, err := s.store.FindCategoryByName(ctx, name)
	if err == nil {
		return nil, newError(ErrConflict, "A category with this name already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	category := &models.Category{
		ID:          newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "A category with this name already exists")
		}
		return nil, err
	}

	s.log.Infof("Category created: %s", category.Name)
	return category, nil
}

// CreateCategoriesBulk creates each category independently. Duplicate names,
// including repeats inside the batch, are reported and skipped.
func (s *Service) CreateCategoriesBulk(ctx context.Context, items []CategoryInput) *BulkCategoriesResult {
	result := &BulkCategoriesResult{Created: []models.Category{}}
	for i, item := range items {
		category, err := s.CreateCategory(ctx, item)
		switch {
		case errors.Is(err, ErrConflict):
			result.Errors = append(result.Errors,
				fmt.Sprintf("A category with the name %q already exists.", strings.TrimSpace(item.Name)))
		case err != nil:
			var e *Error
			if !errors.As(err, &e) {
				s.log.Errorf("Bulk category %d failed: %v", i, err)
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("Error creating category %q: %s", item.Name, Message(err, "Error creating category")))
		default:
			result.Created = append(result.Created, *category)
		}
	}
	return result
}
