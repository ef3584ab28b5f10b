package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeCredentialMissing ErrorCode = "CREDENTIAL_MISSING"
	ErrCodeUpstream          ErrorCode = "UPSTREAM"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrEditSessionNotFound = NewError(ErrCodeNotFound, "edit session not found")
	ErrBlankTitle          = NewError(ErrCodeInvalid, "title must not be blank")
	ErrInvalidImportance   = NewError(ErrCodeInvalid, "unknown importance level")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrUnknownSuggestion   = NewError(ErrCodeInvalid, "unknown suggestion kind")
	ErrCredentialMissing   = NewError(ErrCodeCredentialMissing, "AI credential is not configured")
	ErrSuggestionsDisabled = NewError(ErrCodeUpstream, "AI suggestions are not available")
	ErrBlankSuggestion     = NewError(ErrCodeUpstream, "AI returned an empty suggestion")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
