package client

import (
	"errors"
	"fmt"
	"time"
)

// Kind categorizes a failed call.
type Kind int

const (
	// KindGeneric covers transport failures and malformed responses.
	KindGeneric Kind = iota
	// KindTimeout means the call did not finish within the client timeout.
	KindTimeout
	// KindClientError means the server rejected the request (4xx).
	KindClientError
	// KindServerError means the server failed to process the request (5xx).
	KindServerError
)

// String returns the lowercase name of k.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	default:
		return "generic"
	}
}

// Error is returned by every Client method on failure.
type Error struct {
	// Kind is the failure category.
	Kind Kind

	// Status is the HTTP status code, or 0 when no response arrived.
	Status int

	// Detail is the server's detail message or the transport error text.
	Detail string

	// Timeout is the limit that was exceeded, set for KindTimeout.
	Timeout time.Duration

	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("client: %s (%d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("client: %s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the transport error to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// Message returns the text shown to a user for this failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("Request timed out after %s", e.Timeout)
	case KindClientError:
		return "Bad request: " + e.Detail
	case KindServerError:
		return "Server error: " + e.Detail
	default:
		return "API call failed: " + e.Detail
	}
}

// Message returns the user-facing text for err: the categorized message for
// an *Error and the plain error text otherwise.
func Message(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message()
	}
	return err.Error()
}
