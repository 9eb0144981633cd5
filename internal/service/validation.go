package service

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

const (
	maxUsernameLength    = 50
	maxEmailLength       = 254
	minPasswordLength    = 6
	maxPasswordLength    = 24
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxNameLength        = 50

	defaultListLimit = 20
	maxListLimit     = 100
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	if len(email) > maxEmailLength {
		return invalid("email", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return invalid("email", "is not a valid address")
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return invalid("username", "is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return invalid("username", "must be at most 50 characters")
	}
	return nil
}

func validatePassword(field, password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return invalid(field, "must be between 6 and 24 characters")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return invalid("name", "must be at most 50 characters")
	}
	return nil
}

func validateTaskFields(title, description string, due time.Time) error {
	if title == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalid("title", "must be at most 200 characters")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return invalid("description", "must be at most 2000 characters")
	}
	if due.IsZero() {
		return invalid("due_date", "is required")
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}

func newID() string {
	return ulid.Make().String()
}
