// Package errors provides custom error types and error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	// Input errors.
	CodeInput      = "INPUT_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeEmptyGold  = "EMPTY_GOLD_STANDARD"
	CodeConfig     = "CONFIG_ERROR"
	CodeValidation = "VALIDATION_ERROR"

	// Runtime errors.
	CodeHistory  = "HISTORY_ERROR"
	CodeInternal = "INTERNAL_ERROR"
)

// Process exit codes.
const (
	ExitFailure = 1
	ExitInput   = 2
	ExitConfig  = 3
	ExitHistory = 4
)

// AppError represents an application error with code and details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this error.
func (e *AppError) ExitCode() int {
	switch e.Code {
	case CodeInput, CodeParse, CodeEmptyGold, CodeValidation:
		return ExitInput
	case CodeConfig:
		return ExitConfig
	case CodeHistory:
		return ExitHistory
	default:
		return ExitFailure
	}
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

// InputError creates an error for a missing or unreadable input file.
func InputError(path string, err error) *AppError {
	return Wrap(CodeInput, fmt.Sprintf("cannot read %s", path), err).WithDetail("path", path)
}

// ParseError creates an error for malformed input content.
func ParseError(message string, err error) *AppError {
	return Wrap(CodeParse, message, err)
}

// EmptyGoldError creates the error reported when the gold standard has no terms.
func EmptyGoldError() *AppError {
	return New(CodeEmptyGold, "gold standard contains no terms")
}

// ConfigError creates a configuration error.
func ConfigError(message string, err error) *AppError {
	return Wrap(CodeConfig, message, err)
}

// ValidationError creates a validation error.
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// HistoryError creates a run history error.
func HistoryError(message string, err error) *AppError {
	return Wrap(CodeHistory, message, err)
}

// InternalError creates an internal error.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// As returns the first AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsParse checks if error is a parse error.
func IsParse(err error) bool {
	return HasCode(err, CodeParse)
}

// IsEmptyGold checks if error is an empty gold standard error.
func IsEmptyGold(err error) bool {
	return HasCode(err, CodeEmptyGold)
}

// ExitCode returns the exit code for any error: 0 for nil, the AppError's
// code when present, ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := As(err); ok {
		return appErr.ExitCode()
	}
	return ExitFailure
}
