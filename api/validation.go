package api

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-word-finder/model"
	"github.com/gcbaptista/go-word-finder/services"
)

// maxWordsPerFind bounds the target list accepted over HTTP.
const maxWordsPerFind = 10000

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRoot validates a search root parameter. Existence is checked by
// the engine.
func ValidateRoot(root string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if root == "" {
		result.AddError("root", "Root is required")
		return result
	}

	if strings.TrimSpace(root) != root {
		result.AddError("root", "Root cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateFindRequest validates a find request. Words are matched against
// whitespace separated tokens, so a word containing whitespace could never
// match and is rejected.
func ValidateFindRequest(query *services.FindQuery) *ValidationResult {
	result := ValidateRoot(query.Root)

	if len(query.Words) > maxWordsPerFind {
		result.AddError("words", fmt.Sprintf("At most %d words are allowed", maxWordsPerFind))
	}
	for i, word := range query.Words {
		if word == "" {
			result.AddError(fmt.Sprintf("words[%d]", i), "Word cannot be empty")
			continue
		}
		if strings.IndexFunc(word, unicode.IsSpace) >= 0 {
			result.AddError(fmt.Sprintf("words[%d]", i), "Word cannot contain whitespace")
		}
	}

	if query.MaxLineBytes < 0 {
		result.AddError("max_line_bytes", "Max line bytes must not be negative")
	}
	for i, dir := range query.ExcludeDirs {
		if strings.TrimSpace(dir) == "" || strings.ContainsAny(dir, `/\`) {
			result.AddError(fmt.Sprintf("exclude_dirs[%d]", i), "Excluded directory must be a non-empty base name")
		}
	}

	return result
}

// ValidateTreeRequest validates a tree listing request
func ValidateTreeRequest(query *services.TreeQuery) *ValidationResult {
	result := ValidateRoot(query.Root)

	if strings.ContainsAny(query.Separator, "\r\n") {
		result.AddError("sep", "Separator cannot contain line breaks")
	}

	return result
}

// ValidateJobStatus validates a job status filter
func ValidateJobStatus(status string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch model.JobStatus(status) {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
		model.JobStatusFailed, model.JobStatusCancelling, model.JobStatusCancelled:
	default:
		result.AddError("status", "Unknown job status '"+status+"'")
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}

