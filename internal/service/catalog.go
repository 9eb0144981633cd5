package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// CatalogService manages the categories and statuses shared by all users.
type CatalogService struct {
	store CatalogStore
	now   func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store, now: time.Now}
}

// CreateCategory creates a category.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	c := &model.Category{ID: newID(), Name: name, CreatedAt: s.now().UTC()}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory returns a category by ID.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	return c, nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}

// RenameCategory changes a category's name.
func (s *CatalogService) RenameCategory(ctx context.Context, id, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, mapCatalogError(err)
	}
	return c, nil
}

// DeleteCategory removes a category no task uses.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return mapCatalogError(s.store.DeleteCategory(ctx, id))
}

// CreateStatus creates a status.
func (s *CatalogService) CreateStatus(ctx context.Context, name string, completed bool) (*model.Status, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	st := &model.Status{ID: newID(), Name: name, IsCompleted: completed, CreatedAt: s.now().UTC()}
	if err := s.store.CreateStatus(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetStatus returns a status by ID.
func (s *CatalogService) GetStatus(ctx context.Context, id string) (*model.Status, error) {
	st, err := s.store.GetStatusByID(ctx, id)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	return st, nil
}

// ListStatuses returns all statuses.
func (s *CatalogService) ListStatuses(ctx context.Context) ([]*model.Status, error) {
	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	if statuses == nil {
		statuses = []*model.Status{}
	}
	return statuses, nil
}

// UpdateStatusInput defines input for updating a status. Nil fields are left unchanged.
type UpdateStatusInput struct {
	ID          string
	Name        *string
	IsCompleted *bool
}

// UpdateStatus changes a status's name or completed flag.
func (s *CatalogService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*model.Status, error) {
	st, err := s.GetStatus(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		st.Name = name
	}
	if input.IsCompleted != nil {
		st.IsCompleted = *input.IsCompleted
	}

	if err := s.store.UpdateStatus(ctx, st); err != nil {
		return nil, mapCatalogError(err)
	}
	return st, nil
}

// DeleteStatus removes a status no task uses.
func (s *CatalogService) DeleteStatus(ctx context.Context, id string) error {
	return mapCatalogError(s.store.DeleteStatus(ctx, id))
}

func mapCatalogError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrStatusNotFound):
		return ErrStatusNotFound
	case errors.Is(err, repository.ErrCategoryInUse):
		return ErrCategoryInUse
	case errors.Is(err, repository.ErrStatusInUse):
		return ErrStatusInUse
	}
	return err
}
