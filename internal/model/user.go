// Package model defines domain entities for the application.
package model

import "time"

// User is an account that owns tasks and receives reminders.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PrincipalFor builds the request identity for a user.
func PrincipalFor(u *User) *Principal {
	return &Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
