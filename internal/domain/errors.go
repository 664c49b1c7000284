// Package domain defines the error taxonomy shared by the polling pipeline.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a poll cycle failure.
type Kind string

// Recognized failure kinds. All of them are retryable: the scheduler logs,
// notifies, and waits for the next tick regardless of kind. KindEmptyResult
// is the benign no-new-homework case; KindUnclassified covers anything the
// taxonomy does not name.
const (
	KindTransport      Kind = "transport"
	KindStatusCode     Kind = "status_code"
	KindDecode         Kind = "decode"
	KindShape          Kind = "shape"
	KindMissingKey     Kind = "missing_key"
	KindEmptyResult    Kind = "empty_result"
	KindEmptyStatus    Kind = "empty_status"
	KindUnknownVerdict Kind = "unknown_verdict"
	KindUnclassified   Kind = "unclassified"
)

// Error is a classified failure with a diagnostic message.
type Error struct {
	Kind Kind
	err  error
}

// Errorf builds a classified error. The format string supports %w, so an
// underlying cause stays reachable through errors.Is and errors.As.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// KindOf returns the kind of err, or KindUnclassified when err does not carry
// one anywhere in its chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnclassified
}
