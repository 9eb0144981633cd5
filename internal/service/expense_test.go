package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/todolist/todolist/internal/model"
)

func newExpenseFixture(t *testing.T) (*ExpenseService, taskFixture, *model.Task) {
	t.Helper()
	f := newTaskFixture(t)
	task := f.create(t, "u1")
	return NewExpenseService(newFakeExpenseStore(), f.svc), f, task
}

func TestExpenseService_Create(t *testing.T) {
	t.Parallel()

	svc, _, task := newExpenseFixture(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateExpenseInput{UserID: "u1", TaskID: task.ID, Amount: "1250.5"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.AmountMinor != 125050 {
		t.Errorf("AmountMinor = %d, want 125050", e.AmountMinor)
	}
	if e.Currency != model.DefaultCurrency {
		t.Errorf("Currency = %q, want default", e.Currency)
	}
	if e.SpentAt.IsZero() {
		t.Error("SpentAt should default to now")
	}

	_, err = svc.Create(ctx, CreateExpenseInput{UserID: "u1", TaskID: task.ID, Amount: "1"})
	if !errors.Is(err, ErrExpenseExists) {
		t.Errorf("second Create() error = %v, want ErrExpenseExists", err)
	}
}

func TestExpenseService_CreateValidation(t *testing.T) {
	t.Parallel()

	svc, _, task := newExpenseFixture(t)

	tests := []struct {
		name    string
		input   CreateExpenseInput
		wantErr error
	}{
		{"missing task", CreateExpenseInput{UserID: "u1", Amount: "1"}, ErrInvalidInput},
		{"other user's task", CreateExpenseInput{UserID: "u2", TaskID: task.ID, Amount: "1"}, ErrTaskNotFound},
		{"bad amount", CreateExpenseInput{UserID: "u1", TaskID: task.ID, Amount: "1.234"}, ErrInvalidInput},
		{"negative amount", CreateExpenseInput{UserID: "u1", TaskID: task.ID, Amount: "-1"}, ErrInvalidInput},
		{"bad currency", CreateExpenseInput{UserID: "u1", TaskID: task.ID, Amount: "1", Currency: "EURO"}, ErrInvalidInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Create(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseService_UpdateListDelete(t *testing.T) {
	t.Parallel()

	svc, _, task := newExpenseFixture(t)
	ctx := context.Background()

	list, err := svc.ListByTask(ctx, "u1", task.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListByTask() before create = %v, %v", list, err)
	}

	spent := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e, err := svc.Create(ctx, CreateExpenseInput{UserID: "u1", TaskID: task.ID, Amount: "10", Currency: "usd", SpentAt: &spent})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Currency != "USD" || !e.SpentAt.Equal(spent) {
		t.Errorf("unexpected expense %+v", e)
	}

	updated, err := svc.Update(ctx, UpdateExpenseInput{UserID: "u1", ID: e.ID, Amount: strPtr("12.30")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.AmountMinor != 1230 || updated.Amount() != "12.30" {
		t.Errorf("amount = %d (%s)", updated.AmountMinor, updated.Amount())
	}

	if _, err := svc.Get(ctx, "u2", e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("Get() by other user error = %v, want ErrExpenseNotFound", err)
	}
	if err := svc.Delete(ctx, "u2", e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("Delete() by other user error = %v, want ErrExpenseNotFound", err)
	}

	list, err = svc.ListByTask(ctx, "u1", task.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByTask() = %v, %v", list, err)
	}

	if err := svc.Delete(ctx, "u1", e.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, "u1", e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}
