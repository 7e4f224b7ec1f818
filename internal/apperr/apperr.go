package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes returned to API clients. These are stable:
// clients branch on them, so renaming one is a breaking change.
const (
	CodeDuplicateIdentity = "duplicate_identity"
	CodeInvalidToken      = "invalid_token"
	CodeInvalidState      = "invalid_state"
	CodeDispatchFailed    = "dispatch_failed"
	CodeStoreUnavailable  = "store_unavailable"
)

// default error is internal service error at handler level
// if error needs a different status code use Error
type Error struct {
	Message    string
	Code       string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

func DuplicateIdentity(what string) *Error {
	return &Error{
		Message:    fmt.Sprintf("%s is already taken", what),
		Code:       CodeDuplicateIdentity,
		StatusCode: http.StatusConflict,
	}
}

func InvalidToken() *Error {
	return &Error{
		Message:    "Invalid or expired token",
		Code:       CodeInvalidToken,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidState(msg string) *Error {
	return &Error{
		Message:    msg,
		Code:       CodeInvalidState,
		StatusCode: http.StatusConflict,
	}
}

func StoreUnavailable(err error) *Error {
	return &Error{
		Message:    "Storage unavailable: " + err.Error(),
		Code:       CodeStoreUnavailable,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NotFound(what string) *Error {
	return &Error{
		Message:    what + " not found",
		StatusCode: http.StatusNotFound,
	}
}

func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
