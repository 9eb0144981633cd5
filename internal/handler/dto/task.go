package dto

import (
	"time"

	"github.com/todolist/todolist/internal/model"
)

// CreateTaskRequest is the body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     *Time  `json:"due_date"`
	CategoryID  string `json:"category_id"`
	StatusID    string `json:"status_id"`
}

// UpdateTaskRequest is the body of PUT /api/v1/tasks/{id}. Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *Time   `json:"due_date,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	StatusID    *string `json:"status_id,omitempty"`
}

// CompleteTaskRequest is the optional body of POST /api/v1/tasks/{id}/complete.
type CompleteTaskRequest struct {
	StatusID string `json:"status_id,omitempty"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	CategoryID  string    `json:"category_id"`
	StatusID    string    `json:"status_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks.
type TaskListResponse struct {
	Data       []TaskResponse `json:"data"`
	Pagination *Pagination    `json:"pagination"`
}

// ToTaskResponse converts a Task model to TaskResponse DTO.
func ToTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.UTC(),
		CategoryID:  t.CategoryID,
		StatusID:    t.StatusID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

// ToTaskListResponse converts a page of tasks to a list response.
func ToTaskListResponse(tasks []*model.Task, nextCursor string, hasMore bool) *TaskListResponse {
	data := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		data[i] = ToTaskResponse(t)
	}
	return &TaskListResponse{
		Data: data,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}
