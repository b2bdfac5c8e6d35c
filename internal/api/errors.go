package api

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindUnauthorized means the remote store rejected the credential.
	KindUnauthorized Kind = iota + 1

	// KindRemoteRejected means the remote store understood the request but
	// refused it for a business reason. Message carries the server's reason.
	KindRemoteRejected

	// KindTransportFailure means the remote store could not be reached.
	KindTransportFailure

	// KindMalformed means the response body did not match the expected shape.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRemoteRejected:
		return "remote rejected"
	case KindTransportFailure:
		return "transport failure"
	case KindMalformed:
		return "malformed response"
	}
	return "unknown"
}

// Error is a classified gateway failure.
type Error struct {
	Kind    Kind
	Op      string // logical operation, e.g. "create-item"
	Message string // human-readable reason, suitable for display
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified gateway failure.
func NewError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the failure kind of err, or 0 if err is not a gateway error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsUnauthorized reports whether err is a credential rejection.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// Reason returns the display message of err: the server-supplied reason for
// classified failures, err.Error() otherwise.
func Reason(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
