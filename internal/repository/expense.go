package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/todolist/todolist/internal/model"
)

// Common errors for expense operations.
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrExpenseExists   = errors.New("task already has an expense")
)

const expenseColumns = `id, task_id, amount_minor, currency, spent_at`

// CreateExpense inserts an expense. A task may carry at most one.
func (r *Repository) CreateExpense(ctx context.Context, e *model.Expense) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.TaskID, e.AmountMinor, e.Currency, e.SpentAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExpenseExists
		}
		if isForeignKeyViolation(err) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpenseByID retrieves an expense by ID.
func (r *Repository) GetExpenseByID(ctx context.Context, id string) (*model.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// GetExpenseByTaskID retrieves the expense recorded for a task.
func (r *Repository) GetExpenseByTaskID(ctx context.Context, taskID string) (*model.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE task_id = $1`, taskID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense by task: %w", err)
	}
	return e, nil
}

// UpdateExpense updates amount, currency and spend date.
func (r *Repository) UpdateExpense(ctx context.Context, e *model.Expense) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE expenses SET amount_minor = $2, currency = $3, spent_at = $4 WHERE id = $1`,
		e.ID, e.AmountMinor, e.Currency, e.SpentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// DeleteExpense removes an expense.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (*model.Expense, error) {
	var e model.Expense
	err := row.Scan(&e.ID, &e.TaskID, &e.AmountMinor, &e.Currency, &e.SpentAt)
	return &e, err
}
