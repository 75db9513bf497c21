package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrOpen is returned when a file cannot be opened for reading
	ErrOpen = errors.New("cannot open file")

	// ErrInvalidPath is returned when a search root does not exist or is not a directory
	ErrInvalidPath = errors.New("invalid path")

	// ErrLineTooLong is returned when a line exceeds the tokenizer's buffer bound
	ErrLineTooLong = errors.New("line too long")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// OpenError represents a file that could not be opened for reading
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot open file '%s': %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cannot open file '%s'", e.Path)
}

func (e *OpenError) Is(target error) bool {
	return target == ErrOpen
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// NewOpenError creates a new OpenError
func NewOpenError(path string, err error) *OpenError {
	return &OpenError{Path: path, Err: err}
}

// InvalidPathError represents a search root that cannot be searched
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path '%s': %s", e.Path, e.Reason)
}

func (e *InvalidPathError) Is(target error) bool {
	return target == ErrInvalidPath
}

// NewInvalidPathError creates a new InvalidPathError
func NewInvalidPathError(path, reason string) *InvalidPathError {
	return &InvalidPathError{Path: path, Reason: reason}
}

// LineTooLongError represents a line that does not fit the tokenizer buffer
type LineTooLongError struct {
	Path     string
	MaxBytes int
}

func (e *LineTooLongError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("line in '%s' exceeds %d bytes", e.Path, e.MaxBytes)
	}
	return fmt.Sprintf("line exceeds %d bytes", e.MaxBytes)
}

func (e *LineTooLongError) Is(target error) bool {
	return target == ErrLineTooLong
}

// NewLineTooLongError creates a new LineTooLongError
func NewLineTooLongError(path string, maxBytes int) *LineTooLongError {
	return &LineTooLongError{Path: path, MaxBytes: maxBytes}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
