package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/todolist/todolist/internal/handler/dto"
	"github.com/todolist/todolist/internal/service"
)

// TaskHandler handles HTTP requests for the authenticated user's tasks.
type TaskHandler struct {
	svc    TaskManager
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc TaskManager, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DueDate == nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "due_date: is required")
		return
	}

	task, err := h.svc.Create(r.Context(), service.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Time,
		CategoryID:  req.CategoryID,
		StatusID:    req.StatusID,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_created",
		"task_id", task.ID,
		"user_id", userID,
	)
	writeJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// Get handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// List handles GET /api/v1/tasks.
// Query: cursor, limit (1-100), category_id, status_id, due_before.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	input := service.ListTasksInput{
		UserID:     userID,
		Cursor:     query.Get("cursor"),
		CategoryID: query.Get("category_id"),
		StatusID:   query.Get("status_id"),
	}

	if l := query.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "limit: must be between 1 and 100")
			return
		}
		input.Limit = parsed
	}

	if before := query.Get("due_before"); before != "" {
		t, err := dto.ParseTime(before)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "due_before: "+dto.ErrInvalidTime.Error())
			return
		}
		input.DueBefore = &t
	}

	result, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(result.Tasks, result.NextCursor, result.HasMore))
}

// Update handles PUT /api/v1/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.svc.Update(r.Context(), service.UpdateTaskInput{
		UserID:      userID,
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Ptr(),
		CategoryID:  req.CategoryID,
		StatusID:    req.StatusID,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_updated", "task_id", task.ID, "user_id", userID)
	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Complete handles POST /api/v1/tasks/{id}/complete. Without a status_id
// the first status flagged as completed is used.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CompleteTaskRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	task, err := h.svc.MarkCompleted(r.Context(), userID, chi.URLParam(r, "id"), req.StatusID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_completed",
		"task_id", task.ID,
		"status_id", task.StatusID,
		"user_id", userID,
	)
	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /api/v1/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_deleted", "task_id", id, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
