package dto

import (
	"time"

	"github.com/todolist/todolist/internal/model"
)

// CategoryRequest is the body for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateStatusRequest is the body of POST /api/v1/statuses.
type CreateStatusRequest struct {
	Name        string `json:"name"`
	IsCompleted bool   `json:"is_completed"`
}

// UpdateStatusRequest is the body of PUT /api/v1/statuses/{id}.
type UpdateStatusRequest struct {
	Name        *string `json:"name,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// StatusResponse represents a status in API responses.
type StatusResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListResponse wraps an unpaginated collection.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// ToCategoryResponse converts a Category model to CategoryResponse DTO.
func ToCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt.UTC()}
}

// ToStatusResponse converts a Status model to StatusResponse DTO.
func ToStatusResponse(s *model.Status) StatusResponse {
	return StatusResponse{ID: s.ID, Name: s.Name, IsCompleted: s.IsCompleted, CreatedAt: s.CreatedAt.UTC()}
}

// ToList applies conv to every item.
func ToList[M any, T any](items []*M, conv func(*M) T) ListResponse[T] {
	data := make([]T, len(items))
	for i, item := range items {
		data[i] = conv(item)
	}
	return ListResponse[T]{Data: data}
}
