package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	// ErrEmptyInput is returned when a required input dataset contains
	// no records.
	ErrEmptyInput = errors.New("input dataset contains no records")

	// ErrMissingConfiguration is returned when the closing rules passed
	// to the engine are empty.
	ErrMissingConfiguration = errors.New("closing rules contain no records")

	// ErrNoCasesToClose is returned by the instruction builder when no
	// record qualifies for a case update. This is the normal
	// "nothing to do" outcome of a run, not a failure.
	ErrNoCasesToClose = errors.New("no cases with pending changes found")

	// ErrRowCountMismatch is returned when a per-country evaluation does
	// not reproduce the row count of its input subset.
	ErrRowCountMismatch = errors.New("evaluated data row count differs from input")
)

// ProcessingError wraps errors with context about the pipeline stage that
// failed.
type ProcessingError struct {
	// Op is the operation that failed (e.g. "Merge", "Evaluate").
	Op string

	// Err is the underlying error.
	Err error

	// Country is the country being processed when the failure occurred,
	// if any.
	Country string
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e.Country != "" {
		return fmt.Sprintf("engine: %s failed (country: %s): %v", e.Op, e.Country, e.Err)
	}
	return fmt.Sprintf("engine: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ProcessingError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newProcessingError(op string, err error, country string) *ProcessingError {
	return &ProcessingError{
		Op:      op,
		Err:     err,
		Country: country,
	}
}
