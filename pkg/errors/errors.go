package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeSourceUnavailable ErrorCode = "source_unavailable"
	CodeDestinationLocked ErrorCode = "destination_locked"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"
	CodeWriteFailed       ErrorCode = "write_failed"
	CodeAnnotationFailed  ErrorCode = "annotation_failed"

	// Parse errors
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeIssuesFound  ErrorCode = "issues_found"
	CodeMissingField ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ValidatorError is the base error type for all application errors.
// Row-level data problems are never reported through it; those are
// error records collected by the pipeline.
type ValidatorError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ValidatorError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ValidatorError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ValidatorError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ValidatorError) WithContext(key string, value interface{}) *ValidatorError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ValidatorError) WithSuggestion(suggestion string) *ValidatorError {
	e.Suggestion = suggestion
	return e
}

// ContextKeys returns the context keys in sorted order so output is stable.
func (e *ValidatorError) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New creates a new ValidatorError
func New(category ErrorCategory, code ErrorCode, message string) *ValidatorError {
	return &ValidatorError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ValidatorError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ValidatorError {
	if err == nil {
		return nil
	}

	return &ValidatorError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func build(err error, category ErrorCategory, code ErrorCode, message string) *ValidatorError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// SourceUnavailable reports that no input was selected or that it could not be read.
// An empty path means nothing was selected.
func SourceUnavailable(path string, err error) *ValidatorError {
	message := fmt.Sprintf("input table unavailable: %s", path)
	suggestion := "check that the file exists and is a readable spreadsheet"
	if path == "" {
		message = "no input file was selected"
		suggestion = "pass a file path or pick a file in the interactive prompt"
	}

	return build(err, CategoryFile, CodeSourceUnavailable, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// DestinationLocked reports an output file that cannot be overwritten.
func DestinationLocked(path string, err error) *ValidatorError {
	return build(err, CategoryFile, CodeDestinationLocked, fmt.Sprintf("output file is locked: %s", path)).
		WithSuggestion("close the file in any program that holds it open, then try again").
		WithContext("file_path", path)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ValidatorError {
	var message string
	var suggestion string

	switch code {
	case CodeSourceUnavailable:
		return SourceUnavailable(path, err)
	case CodeDestinationLocked:
		return DestinationLocked(path, err)
	case CodeUnsupportedFormat:
		message = fmt.Sprintf("unsupported file format: %s", path)
		suggestion = "save the ledger as .xlsx or .csv"
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write output table: %s", path)
		suggestion = "ensure the output directory is writable and has free space"
	case CodeAnnotationFailed:
		message = fmt.Sprintf("failed to highlight cells in: %s", path)
		suggestion = "the validated table was written; open it to review the error columns"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return build(err, CategoryFile, code, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a table-shape error
func ParseError(code ErrorCode, file string, column string, err error) *ValidatorError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", column, file)
		suggestion = "verify the header row contains the column with exactly this name"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s, column '%s'", file, column)
		suggestion = "correct the data format or remove the invalid entry"
	default:
		message = fmt.Sprintf("parse error in file %s", file)
		suggestion = "check the file format and data integrity"
	}

	return build(err, CategoryParse, code, message).
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("column", column)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ValidatorError {
	var message string
	var suggestion string

	switch code {
	case CodeIssuesFound:
		message = fmt.Sprintf("validation found %v issues in %s", value, field)
		suggestion = "review the highlighted cells in the validated file"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return build(err, CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ValidatorError {
	message := fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
	if code != CodeInvalidConfig {
		message = fmt.Sprintf("configuration error: %s", setting)
	}

	return build(err, CategoryConfiguration, code, message).
		WithSuggestion("check the configuration file, environment and flags for valid values").
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ValidatorError {
	return build(err, CategoryInternal, code, fmt.Sprintf("unexpected error during %s", operation)).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*ValidatorError     `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*ValidatorError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}
	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}
	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}
	sort.Strings(categories)

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	return es.ByCode[code] > 0
}

// AsValidatorError extracts a ValidatorError from an error chain
func AsValidatorError(err error) (*ValidatorError, bool) {
	var validatorErr *ValidatorError
	if errors.As(err, &validatorErr) {
		return validatorErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a ValidatorError with the given code.
func HasCode(err error, code ErrorCode) bool {
	if validatorErr, ok := AsValidatorError(err); ok {
		return validatorErr.Code == code
	}
	return false
}

// WrapIfNeeded wraps an error if it's not already a ValidatorError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ValidatorError {
	if err == nil {
		return nil
	}

	if validatorErr, ok := AsValidatorError(err); ok {
		return validatorErr
	}

	return Wrap(err, category, code, message)
}
