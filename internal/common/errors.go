package common

import (
	"errors"
	"fmt"
	"strings"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrUnsupported  = errors.New("unsupported file format")
)

// NewAppError builds an AppError with a stable code.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// QuotaMessage is what callers of the batch endpoint see in place of a
// raw quota/rate-limit stack trace.
const QuotaMessage = "The AI service is temporarily over its usage quota. Please wait a few minutes and try again."

// QuotaError marks a quota/rate-limit failure from the generative
// service. Recoverable at the batch level: the file is recorded as an
// error entry and processing continues.
type QuotaError struct {
	Cause error
}

func (e *QuotaError) Error() string {
	return QuotaMessage
}

func (e *QuotaError) Unwrap() error {
	return e.Cause
}

// NewQuotaError wraps err as a QuotaError.
func NewQuotaError(err error) *QuotaError {
	return &QuotaError{Cause: err}
}

// IsQuotaError reports whether err is (or wraps) a QuotaError.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// quota indicators seen in provider error bodies
var quotaMarkers = []string{
	"quota",
	"rate limit",
	"resource_exhausted",
	"too many requests",
	"429",
}

// LooksLikeQuotaError detects a quota/rate-limit condition by message
// content, since providers surface it inconsistently.
func LooksLikeQuotaError(msg string) bool {
	m := strings.ToLower(msg)
	for _, marker := range quotaMarkers {
		if strings.Contains(m, marker) {
			return true
		}
	}
	return false
}
