// Package apperrors defines the application error type shared by services
// and controllers. Services wrap storage failures into an AppError carrying a
// stable code and a user-facing message; controllers map the code to an HTTP
// status.
package apperrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeInsufficientStock     Code = "INSUFFICIENT_STOCK"
	CodeItemNotFound          Code = "ITEM_NOT_FOUND"
	CodeEstablishmentNotFound Code = "ESTABLISHMENT_NOT_FOUND"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeRoomNotFound          Code = "ROOM_NOT_FOUND"
	CodePasswordMismatch      Code = "PASSWORD_MISMATCH"
	CodeRoomAlreadyBlocked    Code = "ROOM_ALREADY_BLOCKED"
	CodeRoomBlocked           Code = "ROOM_BLOCKED"
	CodeDuplicate             Code = "DUPLICATE"
	CodeConflict              Code = "CONFLICT"
	CodeDB                    Code = "DB_ERROR"
	CodeInternal              Code = "INTERNAL_ERROR"
)

// AppError is the error returned by every service operation.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError without an underlying cause.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError around err.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// DB wraps a storage failure.
func DB(message string, err error) *AppError {
	return Wrap(CodeDB, message, err)
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" when err is not an AppError.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
