package engine

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes malformed configurations.
type ConfigErrorCode string

const (
	// ErrCodeMissingField indicates a required top-level field is absent.
	ErrCodeMissingField ConfigErrorCode = "MISSING_FIELD"

	// ErrCodeUnknownEvent indicates the schedule names an event with no fuzzification.
	ErrCodeUnknownEvent ConfigErrorCode = "UNKNOWN_EVENT"

	// ErrCodeUnknownState indicates the transition relation names a state
	// outside the StateSet.
	ErrCodeUnknownState ConfigErrorCode = "UNKNOWN_STATE"

	// ErrCodeNegativeRepeat indicates a schedule phase with a negative repeat count.
	ErrCodeNegativeRepeat ConfigErrorCode = "NEGATIVE_REPEAT"

	// ErrCodeEmptyStateSet indicates the initial memberships declare no state.
	ErrCodeEmptyStateSet ConfigErrorCode = "EMPTY_STATE_SET"

	// ErrCodeInvalidValue indicates a field has the wrong shape or type.
	ErrCodeInvalidValue ConfigErrorCode = "INVALID_VALUE"
)

// ConfigError reports a malformed configuration. It is always raised before
// the first evolution step; the loop never starts with partial data.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Field is the path of the offending field, e.g. "input_schedule[2]".
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(code ConfigErrorCode, field, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsMalformed returns true if err is (or wraps) a ConfigError.
func IsMalformed(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ConfigErrorCodeOf returns the code of a wrapped ConfigError, or "".
func ConfigErrorCodeOf(err error) ConfigErrorCode {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
