package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// UserService manages the authenticated user's own account.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
	cache  PrincipalInvalidator
	logger *slog.Logger
}

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(users UserStore, hasher PasswordHasher, cache PrincipalInvalidator, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		cache:  cache,
		logger: logger,
	}
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput defines input for updating a profile.
// Nil fields are left unchanged. NewPassword requires CurrentPassword.
type UpdateProfileInput struct {
	UserID          string
	Username        *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile changes username, email and optionally the password.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if input.NewPassword != "" {
		if input.CurrentPassword == "" || !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
			return nil, ErrPasswordMismatch
		}
		if err := validatePassword("new_password", input.NewPassword); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Generate(input.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	s.invalidate(ctx, user.ID)
	return user, nil
}

// Delete removes the account with all its tasks.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrincipal(ctx, userID); err != nil {
		// Entry expires on its own; a stale profile is tolerable.
		s.logger.Warn("failed to invalidate cached principal", "user_id", userID, "error", err)
	}
}
