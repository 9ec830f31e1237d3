package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error and fixes its HTTP status.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
	KindUnauthorized
	KindUpload
	KindInternal
)

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindUpload:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type crossing the service boundary. Handlers
// map it to the response envelope; anything that is not an *Error is
// treated as internal.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error // wrapped cause, not serialized
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return e.Kind.Status()
}

// Is lets errors.Is match on kind: errors.Is(err, apperr.Unauthorized("")).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func Validation(msg string, details any) *Error {
	if msg == "" {
		msg = "validation failed"
	}
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Upload(msg string, err error) *Error {
	return &Error{Kind: KindUpload, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	if msg == "" {
		msg = "something went wrong"
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From normalizes any error into an *Error. Unknown errors become
// internal so their detail never leaks to clients.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("", err)
}
