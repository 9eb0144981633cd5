package handler

import (
	"log/slog"
	"net/http"

	"github.com/todolist/todolist/internal/handler/dto"
	"github.com/todolist/todolist/internal/service"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	svc    UserManager
	cookie CookieConfig
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserManager, cookie CookieConfig, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		cookie: cookie,
		logger: logger,
	}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /api/v1/users/me.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), service.UpdateProfileInput{
		UserID:          userID,
		Username:        req.Username,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_updated",
		"user_id", user.ID,
		"password_changed", req.NewPassword != "",
	)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/v1/users/me. The account's tasks go with it.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", userID)
	http.SetCookie(w, expiredCookie(h.cookie))
	w.WriteHeader(http.StatusNoContent)
}
