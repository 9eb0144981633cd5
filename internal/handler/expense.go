package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todolist/todolist/internal/handler/dto"
	"github.com/todolist/todolist/internal/service"
)

// ExpenseHandler handles expenses of the authenticated user's tasks.
type ExpenseHandler struct {
	svc    ExpenseManager
	logger *slog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc ExpenseManager, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.svc.Create(r.Context(), service.CreateExpenseInput{
		UserID:   userID,
		TaskID:   req.TaskID,
		Amount:   req.Amount,
		Currency: req.Currency,
		SpentAt:  req.SpentAt.Ptr(),
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("expense_created",
		"expense_id", expense.ID,
		"task_id", expense.TaskID,
		"user_id", userID,
	)
	writeJSON(w, http.StatusCreated, dto.ToExpenseResponse(expense))
}

// Get handles GET /api/v1/expenses/{id}.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	expense, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(expense))
}

// ListByTask handles GET /api/v1/tasks/{id}/expenses.
func (h *ExpenseHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	expenses, err := h.svc.ListByTask(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToList(expenses, dto.ToExpenseResponse))
}

// Update handles PUT /api/v1/expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.svc.Update(r.Context(), service.UpdateExpenseInput{
		UserID:   userID,
		ID:       chi.URLParam(r, "id"),
		Amount:   req.Amount,
		Currency: req.Currency,
		SpentAt:  req.SpentAt.Ptr(),
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("expense_updated", "expense_id", expense.ID, "user_id", userID)
	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(expense))
}

// Delete handles DELETE /api/v1/expenses/{id}.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("expense_deleted", "expense_id", id, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
