package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured error carrying a classification code
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an inner AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := asAppError(err); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	internal := InternalError(message)
	internal.Cause = err
	return internal
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	_, ok := asAppError(err)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeRangeViolation       = "RANGE_VIOLATION"
	CodeConfidenceOutOfRange = "CONFIDENCE_OUT_OF_RANGE"
	CodeStructuralViolation  = "STRUCTURAL_VIOLATION"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func RangeViolation(message string) *AppError {
	return New(CodeRangeViolation, message)
}

func ConfidenceOutOfRange(confidence float64) *AppError {
	return New(CodeConfidenceOutOfRange, fmt.Sprintf("confidence must be between 0 and 50 (both inclusive), got %g", confidence))
}

func StructuralViolation(message string) *AppError {
	return New(CodeStructuralViolation, message)
}

// IsRangeViolation reports whether err was caused by counts outside [0, records]
func IsRangeViolation(err error) bool {
	return GetCode(err) == CodeRangeViolation
}

// IsConfidenceOutOfRange reports whether err was caused by a confidence outside [0, 50]
func IsConfidenceOutOfRange(err error) bool {
	return GetCode(err) == CodeConfidenceOutOfRange
}

// IsStructuralViolation reports whether err was caused by a malformed subtree
func IsStructuralViolation(err error) bool {
	return GetCode(err) == CodeStructuralViolation
}
