package common

import (
	"errors"
	"fmt"
)

// Error is a service error. Kind is one of the service-level sentinels,
// Message is safe to show to the caller and Cause is only meant for logs.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func Unauthenticated(msg string, cause error) error {
	return &Error{Kind: ErrorUnauthenticated, Message: msg, Cause: cause}
}

func Validation(msg string) error {
	return &Error{Kind: ErrorValidation, Message: msg}
}

func Conflict(msg string, cause error) error {
	return &Error{Kind: ErrorConflict, Message: msg, Cause: cause}
}

// Internal hides cause behind a generic message.
func Internal(cause error) error {
	return &Error{Kind: ErrorInternal, Message: "internal server error", Cause: cause}
}

// KindOf returns the service-level kind of err. Anything that is not a
// *Error is reported as ErrorInternal.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	return ErrorInternal
}

// PublicMessage returns the message that may be sent to the caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrorInternal {
		return e.Message
	}
	return "internal server error"
}
