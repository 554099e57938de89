package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrArticleNotFound    = errors.New("article not found")
	ErrSettingNotFound    = errors.New("article setting not found")
	ErrCompletionNotFound = errors.New("completion not found")
	// ErrConflict marks an optimistic-lock mismatch on a completion row.
	// Callers retry once before surfacing it.
	ErrConflict = errors.New("concurrent update conflict")
)

// ValidationError reports malformed admin input (negative delay,
// unknown mode, self-referential or cyclic prerequisite).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
