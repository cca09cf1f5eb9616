package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
)

// BackfillReadTopics gives every user without a read history an empty one
func (s *Service) BackfillReadTopics(ctx context.Context) (int64, error) {
	n, err := s.store.BackfillReadTopics(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Infof("Updated %d users", n)
	return n, nil
}

// FixInvalidCategories moves topics whose category is missing or unknown into
// the Uncategorized category, creating it on first use.
func (s *Service) FixInvalidCategories(ctx context.Context) (int, error) {
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list topics: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c.ID] = struct{}{}
	}

	var uncategorized *models.Category
	fixed := 0
	for _, t := range topics {
		if _, ok := known[t.CategoryID]; ok {
			continue
		}
		s.log.Infof("Fixing invalid category for topic: %s", t.ID)
		if uncategorized == nil {
			if uncategorized, err = s.uncategorized(ctx); err != nil {
				return fixed, err
			}
		}
		if err := s.store.SetTopicCategory(ctx, t.ID, uncategorized.ID); err != nil {
			return fixed, fmt.Errorf("failed to update topic %s: %w", t.ID, err)
		}
		fixed++
	}
	s.log.Infof("Finished cleaning invalid categories, %d topics fixed", fixed)
	return fixed, nil
}

func (s *Service) uncategorized(ctx context.Context) (*models.Category, error) {
	category, err := s.store.FindCategoryByName(ctx, models.UncategorizedName)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	category = &models.Category{
		ID:          newID(),
		Name:        models.UncategorizedName,
		Description: "Default category for topics with invalid categories",
		CreatedAt:   s.now(),
	}
	err = s.store.CreateCategory(ctx, category)
	if errors.Is(err, repository.ErrDuplicate) {
		return s.store.FindCategoryByName(ctx, models.UncategorizedName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s category: %w", models.UncategorizedName, err)
	}
	return category, nil
}
