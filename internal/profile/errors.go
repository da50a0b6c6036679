package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the profile or a referenced project is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is matched by every ValidationError.
	ErrInvalid = errors.New("invalid input")
)

var errProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)

func projectNotFound(id string) error {
	return fmt.Errorf("project %q %w", id, ErrNotFound)
}

// ValidationError reports input the service refuses to store.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrInvalid) true for any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
