// Package apperr defines the error taxonomy shared by every service and the
// HTTP boundary. Services wrap failures in one of three classes; the server
// maps each class to a status code without inspecting error strings.
//
//	ErrInvalidInput  -> 400 (bad file type, empty required field)
//	ErrPrecondition  -> 400 (query before any document was ingested)
//	ProcessingError  -> 500 (any downstream library or model failure)
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request the caller can fix by changing its input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPrecondition marks a request that arrived before the system was in a
	// state able to serve it.
	ErrPrecondition = errors.New("precondition failed")

	// ErrProcessing is matched by errors.Is for every *ProcessingError.
	ErrProcessing = errors.New("processing failed")
)

// InvalidInput returns an error wrapping ErrInvalidInput with a
// human-readable detail.
func InvalidInput(detail string) error {
	return &classified{class: ErrInvalidInput, detail: detail}
}

// Precondition returns an error wrapping ErrPrecondition with a
// human-readable detail.
func Precondition(detail string) error {
	return &classified{class: ErrPrecondition, detail: detail}
}

// classified carries a detail message for one of the sentinel classes.
type classified struct {
	class  error
	detail string
}

func (e *classified) Error() string { return e.detail }

func (e *classified) Unwrap() error { return e.class }

// ProcessingError reports a failure in a downstream library or model call.
// Err is the underlying cause; its message is surfaced to HTTP callers.
type ProcessingError struct {
	// Op names the stage that failed (e.g. "parse", "embed", "generate").
	Op string
	// Err is the underlying cause.
	Err error
}

// Processing wraps err as a *ProcessingError for stage op. A nil err returns nil.
// An err that is already classified is returned unchanged.
func Processing(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrPrecondition) || errors.Is(err, ErrProcessing) {
		return err
	}
	return &ProcessingError{Op: op, Err: err}
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the cause to errors.Is/As.
func (e *ProcessingError) Unwrap() error { return e.Err }

// Is reports true for ErrProcessing so callers need not use errors.As.
func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }

// Detail returns the message shown to API callers: the detail for
// classified errors, the cause's message for processing errors, and the
// full message otherwise.
func Detail(err error) string {
	var c *classified
	if errors.As(err, &c) {
		return c.detail
	}
	var p *ProcessingError
	if errors.As(err, &p) {
		return p.Err.Error()
	}
	return err.Error()
}
