package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/todolist/todolist/internal/metrics"
	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// TaskService handles task business logic. Every operation is scoped to
// the requesting user; other users' tasks behave as if they did not exist.
type TaskService struct {
	tasks   TaskStore
	catalog CatalogStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, catalog CatalogStore, recorder metrics.Recorder) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TaskService{
		tasks:   tasks,
		catalog: catalog,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	DueDate     time.Time
	CategoryID  string
	StatusID    string
}

// Create creates a task owned by input.UserID.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTaskFields(title, input.Description, input.DueDate); err != nil {
		return nil, err
	}
	if input.CategoryID == "" {
		return nil, invalid("category_id", "is required")
	}
	if input.StatusID == "" {
		return nil, invalid("status_id", "is required")
	}
	if err := s.checkReferences(ctx, input.CategoryID, input.StatusID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &model.Task{
		ID:          newID(),
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate.UTC(),
		CategoryID:  input.CategoryID,
		StatusID:    input.StatusID,
		UserID:      input.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, mapTaskError(err)
	}

	s.metrics.IncTaskCreated()
	return task, nil
}

// Get returns one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, mapTaskError(err)
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasksInput defines input for listing tasks.
type ListTasksInput struct {
	UserID     string
	CategoryID string
	StatusID   string
	DueBefore  *time.Time
	Cursor     string
	Limit      int
}

// ListTasksOutput defines output for listing tasks.
type ListTasksOutput struct {
	Tasks      []*model.Task
	NextCursor string
	HasMore    bool
}

// List returns a page of the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, input ListTasksInput) (*ListTasksOutput, error) {
	filter := repository.TaskFilter{
		UserID:     input.UserID,
		CategoryID: input.CategoryID,
		StatusID:   input.StatusID,
		DueBefore:  input.DueBefore,
	}

	tasks, next, err := s.tasks.ListTasks(ctx, filter, input.Cursor, normalizeLimit(input.Limit))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, invalid("cursor", "is invalid")
		}
		return nil, err
	}

	if tasks == nil {
		tasks = []*model.Task{}
	}

	return &ListTasksOutput{
		Tasks:      tasks,
		NextCursor: next,
		HasMore:    next != "",
	}, nil
}

// UpdateTaskInput defines input for updating a task. Nil fields are left unchanged.
type UpdateTaskInput struct {
	UserID      string
	ID          string
	Title       *string
	Description *string
	DueDate     *time.Time
	CategoryID  *string
	StatusID    *string
}

// Update changes a task's mutable fields.
func (s *TaskService) Update(ctx context.Context, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate.UTC()
	}
	if err := validateTaskFields(task.Title, task.Description, task.DueDate); err != nil {
		return nil, err
	}

	var categoryID, statusID string
	if input.CategoryID != nil && *input.CategoryID != task.CategoryID {
		categoryID = *input.CategoryID
		task.CategoryID = categoryID
	}
	if input.StatusID != nil && *input.StatusID != task.StatusID {
		statusID = *input.StatusID
		task.StatusID = statusID
	}
	if err := s.checkReferences(ctx, categoryID, statusID); err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, mapTaskError(err)
	}

	s.metrics.IncTaskUpdated()
	return task, nil
}

// MarkCompleted moves a task to a status flagged as completed. With an
// empty statusID the first completed status is used.
func (s *TaskService) MarkCompleted(ctx context.Context, userID, taskID, statusID string) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	status, err := s.completedStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.SetTaskStatus(ctx, task.ID, userID, status.ID); err != nil {
		return nil, mapTaskError(err)
	}

	task.StatusID = status.ID
	s.metrics.IncTaskCompleted()
	return task, nil
}

// Delete removes a task. Its expense and reminder record go with it.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.tasks.DeleteTask(ctx, id, userID); err != nil {
		return mapTaskError(err)
	}
	s.metrics.IncTaskDeleted()
	return nil
}

func (s *TaskService) completedStatus(ctx context.Context, statusID string) (*model.Status, error) {
	if statusID != "" {
		status, err := s.catalog.GetStatusByID(ctx, statusID)
		if err != nil {
			return nil, mapCatalogError(err)
		}
		if !status.IsCompleted {
			return nil, ErrStatusNotCompleted
		}
		return status, nil
	}

	statuses, err := s.catalog.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st.IsCompleted {
			return st, nil
		}
	}
	return nil, ErrStatusNotCompleted
}

// checkReferences verifies non-empty category and status IDs exist.
func (s *TaskService) checkReferences(ctx context.Context, categoryID, statusID string) error {
	if categoryID != "" {
		if _, err := s.catalog.GetCategoryByID(ctx, categoryID); err != nil {
			return mapCatalogError(err)
		}
	}
	if statusID != "" {
		if _, err := s.catalog.GetStatusByID(ctx, statusID); err != nil {
			return mapCatalogError(err)
		}
	}
	return nil
}

func mapTaskError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, repository.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}
