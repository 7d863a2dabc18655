package core

// errors.go – the error taxonomy from spec.md §7. A single Error type
// carries a Kind so callers can branch with errors.Is/errors.As instead of
// string-matching, while still composing with fmt.Errorf's %w.

import (
	"errors"
	"fmt"
)

// Kind enumerates the closed set of error categories the spec defines.
type Kind uint8

const (
	KindValidation Kind = iota
	KindNotFound
	KindInsufficientResource
	KindUnauthorized
	KindProtocol
	KindConsensusViolation
	KindTimeout
	KindTransient
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindNotFound:
		return "NotFound"
	case KindInsufficientResource:
		return "InsufficientResource"
	case KindUnauthorized:
		return "Unauthorized"
	case KindProtocol:
		return "Protocol"
	case KindConsensusViolation:
		return "ConsensusViolation"
	case KindTimeout:
		return "Timeout"
	case KindTransient:
		return "Transient"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every leaf operation in this
// module. Required/Available are populated for InsufficientResource errors.
type Error struct {
	Kind      Kind
	Op        string
	Message   string
	Err       error
	Required  uint64
	Available uint64
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match by Kind: it reports true when target is also an
// *Error with the same Kind, and false for any other target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

func ErrValidation(op, msg string) error  { return newErr(KindValidation, op, msg, nil) }
func ErrNotFoundf(op, msg string) error   { return newErr(KindNotFound, op, msg, nil) }
func ErrUnauthorizedf(op, msg string) error { return newErr(KindUnauthorized, op, msg, nil) }
func ErrProtocolf(op, msg string) error   { return newErr(KindProtocol, op, msg, nil) }
func ErrConsensus(op, msg string) error   { return newErr(KindConsensusViolation, op, msg, nil) }
func ErrTimeoutf(op, msg string) error    { return newErr(KindTimeout, op, msg, nil) }
func ErrInternalf(op, msg string, err error) error {
	return newErr(KindInternal, op, msg, err)
}

// ErrInsufficient builds an InsufficientResource error carrying the
// required/available amounts the caller needs to act on (§7).
func ErrInsufficient(op, msg string, required, available uint64) error {
	e := newErr(KindInsufficientResource, op, msg, nil)
	e.Required, e.Available = required, available
	return e
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
