package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/todolist/todolist/internal/model"
)

// Common errors for category and status operations.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is referenced by tasks")
	ErrStatusNotFound   = errors.New("status not found")
	ErrStatusInUse      = errors.New("status is referenced by tasks")
)

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category by ID.
func (r *Repository) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory renames a category.
func (r *Repository) UpdateCategory(ctx context.Context, c *model.Category) error {
	result, err := r.pool.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category that no task references.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateStatus inserts a new status.
func (r *Repository) CreateStatus(ctx context.Context, s *model.Status) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO statuses (id, name, is_completed, created_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.Name, s.IsCompleted, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create status: %w", err)
	}
	return nil
}

// GetStatusByID retrieves a status by ID.
func (r *Repository) GetStatusByID(ctx context.Context, id string) (*model.Status, error) {
	var s model.Status
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_completed, created_at FROM statuses WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.IsCompleted, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &s, nil
}

// ListStatuses returns all statuses ordered by name.
func (r *Repository) ListStatuses(ctx context.Context) ([]*model.Status, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_completed, created_at FROM statuses ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]*model.Status, 0)
	for rows.Next() {
		var s model.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.IsCompleted, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statuses: %w", err)
	}
	return statuses, nil
}

// UpdateStatus updates a status's name and completion flag.
func (r *Repository) UpdateStatus(ctx context.Context, s *model.Status) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE statuses SET name = $2, is_completed = $3 WHERE id = $1`,
		s.ID, s.Name, s.IsCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStatusNotFound
	}
	return nil
}

// DeleteStatus removes a status that no task references.
func (r *Repository) DeleteStatus(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM statuses WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrStatusInUse
		}
		return fmt.Errorf("failed to delete status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStatusNotFound
	}
	return nil
}
