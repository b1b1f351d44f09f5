package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// AsAppError reports whether err wraps an *AppError and returns it.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Error codes surfaced to clients.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeNameMismatch    = "NAME_MISMATCH"
	CodeFactionMismatch = "FACTION_MISMATCH"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeAccountLocked   = "ACCOUNT_LOCKED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

// ErrConflict reports a duplicate or already-in-progress record. Clients of this
// API treat conflicts as plain bad requests, so the status is 400.
func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Status: 400}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrInvalidJSON(cause error) *AppError {
	return &AppError{Code: CodeInvalidJSON, Message: "file is not valid JSON", Status: 400, Cause: cause}
}

func ErrNameMismatch(want, got string) *AppError {
	return &AppError{
		Code:    CodeNameMismatch,
		Message: fmt.Sprintf("roster name %q does not match warband name %q", got, want),
		Status:  400,
	}
}

func ErrFactionMismatch(want, got string) *AppError {
	return &AppError{
		Code:    CodeFactionMismatch,
		Message: fmt.Sprintf("roster faction %q does not match warband faction %q", got, want),
		Status:  400,
	}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: CodeAccountLocked, Message: msg, Status: 429}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}
