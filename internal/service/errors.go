package service

import (
	"errors"
	"fmt"

	"fittrack/backend/internal/populate"
	"fittrack/backend/internal/repository"
)

// --- Error Definitions ---
var (
	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrWorkoutNotFound  = fmt.Errorf("workout %w", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("exercise %w", ErrNotFound)

	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrVideoStorageDisabled = errors.New("video storage is not configured")
	ErrNoVideo              = fmt.Errorf("exercise video %w", ErrNotFound)
)

// DanglingReferenceError is returned by Populate under the fail policy.
type DanglingReferenceError = populate.DanglingReferenceError

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// translate maps repository errors onto the service taxonomy.
// notFound is returned in place of repository.ErrNotFound.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}
