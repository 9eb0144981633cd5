package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/todolist/todolist/internal/model"
)

// Common errors for task repository operations.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidReference = errors.New("referenced category, status or user does not exist")
	ErrInvalidCursor    = errors.New("invalid pagination cursor")
)

// TaskFilter defines filters for listing a user's tasks.
type TaskFilter struct {
	UserID     string
	CategoryID string
	StatusID   string
	DueBefore  *time.Time
}

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

const taskColumns = `id, title, description, due_date, category_id, status_id, user_id, created_at, updated_at`

// CreateTask inserts a new task into the database.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, due_date, category_id, status_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.CategoryID,
		task.StatusID,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w (%s)", ErrInvalidReference, constraintName(err))
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTaskByID retrieves a task by its ID regardless of owner.
func (r *Repository) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}

	return task, nil
}

// ListTasks retrieves a page of a user's tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context, filter TaskFilter, cursor string, limit int) ([]*model.Task, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{filter.UserID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, filter.CategoryID)
		argIndex++
	}

	if filter.StatusID != "" {
		query += fmt.Sprintf(" AND status_id = $%d", argIndex)
		args = append(args, filter.StatusID)
		argIndex++
	}

	if filter.DueBefore != nil {
		query += fmt.Sprintf(" AND due_date <= $%d", argIndex)
		args = append(args, *filter.DueBefore)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	tasks, err := r.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list tasks: %w", err)
	}

	var nextCursor string
	if len(tasks) > limit {
		tasks = tasks[:limit]
		last := tasks[len(tasks)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		})
	}

	return tasks, nextCursor, nil
}

// UpdateTask updates a task's mutable fields. Only the owner's row is touched.
func (r *Repository) UpdateTask(ctx context.Context, task *model.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, due_date = $5, category_id = $6, status_id = $7
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate,
		task.CategoryID,
		task.StatusID,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w (%s)", ErrInvalidReference, constraintName(err))
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// SetTaskStatus moves an owned task to another status.
func (r *Repository) SetTaskStatus(ctx context.Context, taskID, userID, statusID string) error {
	query := `UPDATE tasks SET status_id = $3 WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, taskID, userID, statusID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("failed to set task status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteTask removes an owned task together with its expense and reminder.
func (r *Repository) DeleteTask(ctx context.Context, id, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// ListTasksDueWithoutReminder returns tasks due at or before threshold
// (overdue ones included) for which no reminder has been recorded.
func (r *Repository) ListTasksDueWithoutReminder(ctx context.Context, threshold time.Time) ([]*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.due_date <= $1
		  AND NOT EXISTS (SELECT 1 FROM task_reminders r WHERE r.task_id = t.id)
		ORDER BY t.due_date, t.id
	`

	tasks, err := r.queryTasks(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}

	return tasks, nil
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]*model.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.CategoryID,
		&task.StatusID,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == nil {
		task.DueDate = task.DueDate.UTC()
	}
	return &task, err
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}
	if cursor.ID == "" || cursor.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}

	return &cursor, nil
}
