package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumnType is returned when a type name is not registered.
	ErrUnknownColumnType = errors.New("unknown column type")

	// ErrNotFound is returned by stores when a list, column, view or item
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTooManyImports is returned when no import slot frees up in time.
	ErrTooManyImports = errors.New("too many imports in progress")
)

// ValidationError reports bad caller input: malformed CSV, an empty file,
// a non-CSV upload, or an invalid request field.
type ValidationError struct {
	Field   string // Field or column name, if any
	Value   string // The offending value, if any
	Message string
	Err     error // Underlying sentinel, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError without a field.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConversionError reports a value that cannot be coerced to its column type.
type ConversionError struct {
	Type  ColumnType
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid number %v for %s column: %v", e.Value, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NotFoundError names the missing entity and wraps ErrNotFound.
func NotFoundError(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ce *ConversionError
	return errors.As(err, &ve) || errors.As(err, &ce) || errors.Is(err, ErrUnknownColumnType)
}
