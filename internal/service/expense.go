package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// ExpenseService manages the expense attached to a task. Access follows
// task ownership.
type ExpenseService struct {
	expenses ExpenseStore
	tasks    *TaskService
	now      func() time.Time
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenses ExpenseStore, tasks *TaskService) *ExpenseService {
	return &ExpenseService{expenses: expenses, tasks: tasks, now: time.Now}
}

// CreateExpenseInput defines input for recording an expense.
type CreateExpenseInput struct {
	UserID   string
	TaskID   string
	Amount   string
	Currency string
	SpentAt  *time.Time
}

// Create records the expense of one of the user's tasks.
func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput) (*model.Expense, error) {
	if input.TaskID == "" {
		return nil, invalid("task_id", "is required")
	}
	if _, err := s.tasks.Get(ctx, input.UserID, input.TaskID); err != nil {
		return nil, err
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	spentAt := s.now().UTC()
	if input.SpentAt != nil {
		spentAt = input.SpentAt.UTC()
	}

	e := &model.Expense{
		ID:          newID(),
		TaskID:      input.TaskID,
		AmountMinor: amount,
		Currency:    currency,
		SpentAt:     spentAt,
	}

	if err := s.expenses.CreateExpense(ctx, e); err != nil {
		return nil, mapExpenseError(err)
	}
	return e, nil
}

// Get returns an expense of one of the user's tasks.
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*model.Expense, error) {
	e, err := s.expenses.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, mapExpenseError(err)
	}
	if _, err := s.tasks.Get(ctx, userID, e.TaskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListByTask returns the expenses of a task: none or one.
func (s *ExpenseService) ListByTask(ctx context.Context, userID, taskID string) ([]*model.Expense, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}

	e, err := s.expenses.GetExpenseByTaskID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return []*model.Expense{}, nil
		}
		return nil, err
	}
	return []*model.Expense{e}, nil
}

// UpdateExpenseInput defines input for updating an expense. Nil fields are left unchanged.
type UpdateExpenseInput struct {
	UserID   string
	ID       string
	Amount   *string
	Currency *string
	SpentAt  *time.Time
}

// Update changes amount, currency or spend date.
func (s *ExpenseService) Update(ctx context.Context, input UpdateExpenseInput) (*model.Expense, error) {
	e, err := s.Get(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		amount, err := parseAmount(*input.Amount)
		if err != nil {
			return nil, err
		}
		e.AmountMinor = amount
	}
	if input.Currency != nil {
		currency, err := normalizeCurrency(*input.Currency)
		if err != nil {
			return nil, err
		}
		e.Currency = currency
	}
	if input.SpentAt != nil {
		e.SpentAt = input.SpentAt.UTC()
	}

	if err := s.expenses.UpdateExpense(ctx, e); err != nil {
		return nil, mapExpenseError(err)
	}
	return e, nil
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return mapExpenseError(s.expenses.DeleteExpense(ctx, id))
}

func parseAmount(s string) (int64, error) {
	amount, err := model.ParseAmount(s)
	if err != nil {
		return 0, invalid("amount", "must be a decimal with at most two fraction digits")
	}
	if amount < 0 {
		return 0, invalid("amount", "must not be negative")
	}
	return amount, nil
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return model.DefaultCurrency, nil
	}
	if len(c) != 3 {
		return "", invalid("currency", "must be a 3-letter code")
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", invalid("currency", "must be a 3-letter code")
		}
	}
	return c, nil
}

func mapExpenseError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrExpenseNotFound):
		return ErrExpenseNotFound
	case errors.Is(err, repository.ErrExpenseExists):
		return ErrExpenseExists
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	}
	return err
}
