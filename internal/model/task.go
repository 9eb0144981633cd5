package model

import "time"

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	CategoryID  string    `json:"category_id"`
	StatusID    string    `json:"status_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOverdue reports whether the due date has passed at now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate.Before(now)
}

// DueWithin reports whether the task is due no later than now+window.
// Overdue tasks are always within the window.
func (t *Task) DueWithin(now time.Time, window time.Duration) bool {
	return !t.DueDate.After(now.Add(window))
}

// Category groups tasks. Categories are shared by all users.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Status is a workflow state a task can be in.
type Status struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}
