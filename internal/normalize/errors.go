package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrRequired     = errors.New("normalize: required field missing")
	ErrInvalidJSON  = errors.New("normalize: invalid json")
	ErrInvalidDate  = errors.New("normalize: invalid date")
	ErrInvalidID    = errors.New("normalize: invalid numeric id")
	ErrInvalidValue = errors.New("normalize: invalid value")
	ErrDuplicateKey = errors.New("normalize: duplicate natural key")
	ErrUnknownKind  = errors.New("normalize: unknown collection kind")
)

// ValidationError fails a single row. Line is the row's source line.
type ValidationError struct {
	Line  int
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(line int, field string, err error) *ValidationError {
	return &ValidationError{Line: line, Field: field, Err: err}
}
