package tabinspect

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error messages and error creation functions for consistency
var (
	// errDuplicateColumnName is returned when a file contains duplicate column names
	errDuplicateColumnName = errors.New("duplicate column name")

	// errEmptyHeader is returned when an input has no named columns
	errEmptyHeader = errors.New("header has no columns")

	// ErrDataNotFound indicates that no candidate source exists and no fallback is configured
	ErrDataNotFound = errors.New("tabinspect: no data source found")

	// ErrColumnNotFound indicates that a requested column is absent from the dataset
	ErrColumnNotFound = errors.New("tabinspect: column not found")

	// ErrDateParse indicates that a value cannot be parsed as a timestamp
	ErrDateParse = errors.New("tabinspect: cannot parse timestamp")

	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("tabinspect: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("tabinspect: unsupported file format")

	// ErrInvalidData indicates malformed or invalid data
	ErrInvalidData = errors.New("tabinspect: invalid data format")
)

// DataNotFoundError is returned by Loader.Load when none of the candidate
// paths exist and no fallback generator is configured.
type DataNotFoundError struct {
	Candidates []string
}

// Error implements error.
func (e *DataNotFoundError) Error() string {
	if len(e.Candidates) == 0 {
		return ErrDataNotFound.Error() + ": no candidate paths given"
	}
	return fmt.Sprintf("%s: tried %s", ErrDataNotFound, strings.Join(e.Candidates, ", "))
}

// Unwrap returns ErrDataNotFound.
func (e *DataNotFoundError) Unwrap() error {
	return ErrDataNotFound
}

// ColumnNotFoundError reports a column that a select or filter call asked for
// but the dataset does not have. Available lists the dataset's columns so the
// caller can show them.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

// Error implements error.
func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (available: %s)", ErrColumnNotFound, e.Column, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrColumnNotFound.
func (e *ColumnNotFoundError) Unwrap() error {
	return ErrColumnNotFound
}

// DateParseError reports a single cell that could not be read as a timestamp.
// Row is the zero-based record index in the dataset.
type DateParseError struct {
	Column string
	Row    int
	Value  string
}

// Error implements error.
func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s: column %q row %d: %q", ErrDateParse, e.Column, e.Row, e.Value)
}

// Unwrap returns ErrDateParse.
func (e *DateParseError) Unwrap() error {
	return ErrDateParse
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("tabinspect: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
