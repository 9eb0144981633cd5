package dto

import (
	"time"

	"github.com/todolist/todolist/internal/model"
)

// CreateExpenseRequest is the body of POST /api/v1/expenses.
// Amount is a decimal string such as "1250.50".
type CreateExpenseRequest struct {
	TaskID   string `json:"task_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
	SpentAt  *Time  `json:"spent_at,omitempty"`
}

// UpdateExpenseRequest is the body of PUT /api/v1/expenses/{id}.
type UpdateExpenseRequest struct {
	Amount   *string `json:"amount,omitempty"`
	Currency *string `json:"currency,omitempty"`
	SpentAt  *Time   `json:"spent_at,omitempty"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID       string    `json:"id"`
	TaskID   string    `json:"task_id"`
	Amount   string    `json:"amount"`
	Currency string    `json:"currency"`
	SpentAt  time.Time `json:"spent_at"`
}

// ToExpenseResponse converts an Expense model to ExpenseResponse DTO.
func ToExpenseResponse(e *model.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:       e.ID,
		TaskID:   e.TaskID,
		Amount:   e.Amount(),
		Currency: e.Currency,
		SpentAt:  e.SpentAt.UTC(),
	}
}
