package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/daily-learning/internal/models"
)

const categoryColumns = `id, name, description, created_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	category := &models.Category{}
	if err := row.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateCategory creates a new category in the database
func (r *PostgresStore) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Description, category.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *PostgresStore) queryCategory(ctx context.Context, query string, arg any) (*models.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// GetCategory retrieves a category by id
func (r *PostgresStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return r.queryCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// FindCategoryByName retrieves a category by its unique name
func (r *PostgresStore) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return r.queryCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
}

// ListCategories returns all categories sorted by name
func (r *PostgresStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
