// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateUser      = errors.New("a user with this email already exists")
	ErrPasswordMismatch   = errors.New("current password is incorrect")

	ErrUserNotFound     = errors.New("user not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrStatusNotFound   = errors.New("status not found")
	ErrExpenseNotFound  = errors.New("expense not found")

	ErrCategoryInUse      = errors.New("category is used by tasks")
	ErrStatusInUse        = errors.New("status is used by tasks")
	ErrExpenseExists      = errors.New("task already has an expense")
	ErrStatusNotCompleted = errors.New("status does not mark tasks as completed")
)

// ValidationError describes a rejected input field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) succeed.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
