package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emzola/shelflog/repository"
)

var (
	ErrFailedValidation     = errors.New("failed validation")
	ErrRecordNotFound       = errors.New("record not found")
	ErrBadRequest           = errors.New("bad request")
	ErrUnavailable          = errors.New("database unavailable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrNotConfigured        = errors.New("not configured")

	// ErrInvalidNotes is returned when a request carries a notes value that is
	// not an array of notes.
	ErrInvalidNotes = fmt.Errorf("%w: notes must be an array", ErrBadRequest)
)

// ValidationError holds the field errors of a rejected book or filter set.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%q %s", k, e.Errors[k])
	}
	return "failed validation: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrFailedValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrFailedValidation
}

// failedValidation wraps a validation error map, returning nil when it is empty.
func (s *service) failedValidation(errorMap map[string]string) error {
	if len(errorMap) == 0 {
		return nil
	}
	return &ValidationError{Errors: errorMap}
}

// repoError translates repository errors into service errors.
func repoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, repository.ErrFailedValidation):
		return &ValidationError{Errors: map[string]string{"book": "was rejected by the database"}}
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
