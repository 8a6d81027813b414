// Package errors defines the sentinel errors of an indexing run and maps
// them to process exit codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInputNotFound = errors.New("input not found")
	ErrDecode        = errors.New("document is not valid text")
	ErrEmptyDocument = errors.New("document has no indexable tokens")
	ErrInvalidState  = errors.New("invalid index state")
	ErrOutputWrite   = errors.New("output write failed")
	ErrInvalidInput  = errors.New("invalid input")
)

// Exit codes returned by the indexer binary.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitInputMissing = 3
	ExitOutputWrite  = 4
	ExitInvalidState = 5
)

// AppError ties a sentinel to the filesystem path it concerns.
type AppError struct {
	Err     error
	Path    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Err.Error(), e.Path, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func New(sentinel error, path string, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Path:    path,
		Message: message,
	}
}

func Newf(sentinel error, path string, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a sentinel and a path to an underlying cause, keeping both
// reachable through errors.Is.
func Wrap(sentinel error, path string, cause error) *AppError {
	return &AppError{
		Err:     sentinel,
		Path:    path,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// PathOf returns the path recorded on the first AppError in err's chain.
func PathOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Path
	}
	return ""
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrInputNotFound):
		return ExitInputMissing
	case errors.Is(err, ErrOutputWrite):
		return ExitOutputWrite
	case errors.Is(err, ErrInvalidState):
		return ExitInvalidState
	default:
		return ExitFailure
	}
}
