package service

import (
	"context"
	"time"

	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// UserStore persists users. Implemented by *repository.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// TaskStore persists tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter repository.TaskFilter, cursor string, limit int) ([]*model.Task, string, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	SetTaskStatus(ctx context.Context, taskID, userID, statusID string) error
	DeleteTask(ctx context.Context, id, userID string) error
}

// CatalogStore persists categories and statuses.
type CatalogStore interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateStatus(ctx context.Context, s *model.Status) error
	GetStatusByID(ctx context.Context, id string) (*model.Status, error)
	ListStatuses(ctx context.Context) ([]*model.Status, error)
	UpdateStatus(ctx context.Context, s *model.Status) error
	DeleteStatus(ctx context.Context, id string) error
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *model.Expense) error
	GetExpenseByID(ctx context.Context, id string) (*model.Expense, error)
	GetExpenseByTaskID(ctx context.Context, taskID string) (*model.Expense, error)
	UpdateExpense(ctx context.Context, e *model.Expense) error
	DeleteExpense(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies passwords. Implemented by *auth.PasswordHasher.
type PasswordHasher interface {
	Generate(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer issues access tokens. Implemented by *auth.TokenProvider.
type TokenIssuer interface {
	Issue(userID string, expiryHours int) (string, time.Time, error)
}

// PrincipalInvalidator drops cached request identities. Implemented by *cache.Cache.
type PrincipalInvalidator interface {
	DeletePrincipal(ctx context.Context, userID string) error
}
