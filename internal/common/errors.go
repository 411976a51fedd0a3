package common

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable failure class.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation_failure"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is a typed failure carrying a Kind and a human-readable message.
// Two *Error values match under errors.Is when their kinds are equal, so
// callers compare against the sentinels below.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

var (
	// Repository-level errors.
	ErrorNotFound = &Error{Kind: KindNotFound, Message: "not found"}

	// Service-level errors.
	ErrorValidation   = &Error{Kind: KindValidation, Message: "validation failure"}
	ErrorUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrorConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrorInternal     = &Error{Kind: KindInternal, Message: "internal error"}
)

// NotFound builds a NotFound failure with a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a ValidationFailure with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds an Unauthorized failure with a formatted message.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to a lower-level cause.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf reports the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the message of the outermost typed failure in err's
// chain, leaving out any cause. Untyped errors yield the internal message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrorInternal.Message
}
