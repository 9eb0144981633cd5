package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todolist/todolist/internal/handler/dto"
	"github.com/todolist/todolist/internal/service"
)

// CatalogHandler serves the shared categories and statuses.
type CatalogHandler struct {
	svc    CatalogManager
	logger *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc CatalogManager, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		svc:    svc,
		logger: logger,
	}
}

// CreateCategory handles POST /api/v1/categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("category_created", "category_id", category.ID)
	writeJSON(w, http.StatusCreated, dto.ToCategoryResponse(category))
}

// GetCategory handles GET /api/v1/categories/{id}.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToCategoryResponse(category))
}

// ListCategories handles GET /api/v1/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToList(categories, dto.ToCategoryResponse))
}

// UpdateCategory handles PUT /api/v1/categories/{id}.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.svc.RenameCategory(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("category_updated", "category_id", category.ID)
	writeJSON(w, http.StatusOK, dto.ToCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/categories/{id}.
// A category still used by a task is not deleted (409).
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("category_deleted", "category_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// CreateStatus handles POST /api/v1/statuses.
func (h *CatalogHandler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := h.svc.CreateStatus(r.Context(), req.Name, req.IsCompleted)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("status_created", "status_id", status.ID, "is_completed", status.IsCompleted)
	writeJSON(w, http.StatusCreated, dto.ToStatusResponse(status))
}

// GetStatus handles GET /api/v1/statuses/{id}.
func (h *CatalogHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToStatusResponse(status))
}

// ListStatuses handles GET /api/v1/statuses.
func (h *CatalogHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.ListStatuses(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToList(statuses, dto.ToStatusResponse))
}

// UpdateStatus handles PUT /api/v1/statuses/{id}.
func (h *CatalogHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := h.svc.UpdateStatus(r.Context(), service.UpdateStatusInput{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("status_updated", "status_id", status.ID)
	writeJSON(w, http.StatusOK, dto.ToStatusResponse(status))
}

// DeleteStatus handles DELETE /api/v1/statuses/{id}.
func (h *CatalogHandler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteStatus(r.Context(), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("status_deleted", "status_id", id)
	w.WriteHeader(http.StatusNoContent)
}
