package handler

import (
	"context"

	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/service"
)

// Authenticator is implemented by *service.AuthService.
type Authenticator interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// UserManager is implemented by *service.UserService.
type UserManager interface {
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, input service.UpdateProfileInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// TaskManager is implemented by *service.TaskService.
type TaskManager interface {
	Create(ctx context.Context, input service.CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, userID, id string) (*model.Task, error)
	List(ctx context.Context, input service.ListTasksInput) (*service.ListTasksOutput, error)
	Update(ctx context.Context, input service.UpdateTaskInput) (*model.Task, error)
	MarkCompleted(ctx context.Context, userID, taskID, statusID string) (*model.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// CatalogManager is implemented by *service.CatalogService.
type CatalogManager interface {
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	RenameCategory(ctx context.Context, id, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateStatus(ctx context.Context, name string, completed bool) (*model.Status, error)
	GetStatus(ctx context.Context, id string) (*model.Status, error)
	ListStatuses(ctx context.Context) ([]*model.Status, error)
	UpdateStatus(ctx context.Context, input service.UpdateStatusInput) (*model.Status, error)
	DeleteStatus(ctx context.Context, id string) error
}

// ExpenseManager is implemented by *service.ExpenseService.
type ExpenseManager interface {
	Create(ctx context.Context, input service.CreateExpenseInput) (*model.Expense, error)
	Get(ctx context.Context, userID, id string) (*model.Expense, error)
	ListByTask(ctx context.Context, userID, taskID string) ([]*model.Expense, error)
	Update(ctx context.Context, input service.UpdateExpenseInput) (*model.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

var (
	_ Authenticator  = (*service.AuthService)(nil)
	_ UserManager    = (*service.UserService)(nil)
	_ TaskManager    = (*service.TaskService)(nil)
	_ CatalogManager = (*service.CatalogService)(nil)
	_ ExpenseManager = (*service.ExpenseService)(nil)
)
