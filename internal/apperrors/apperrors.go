package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindPermission
	KindConflict
	KindTransient
)

// Error carries a kind, a stable machine code and a human message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or oversized input.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// NotFound reports a missing recipe, comment, suggestion, report or user.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Permission reports an actor that is not owner, not admin, or blocked.
func Permission(code, message string) *Error {
	return &Error{Kind: KindPermission, Code: code, Message: message}
}

// Conflict reports duplicate reports, duplicate blocks and self-blocks.
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Transient wraps a storage failure. The wrapped error is kept for logs but
// never surfaced to clients.
func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Code: "storage_error", Message: "temporary storage failure", Err: err}
}

// HTTPStatus maps a kind to its status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *Error from err, or nil.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
