package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure the way callers need to react to it.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindAccessDenied
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAccessDenied:
		return "access_denied"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error carries a kind plus a human-readable message across module
// boundaries. Wrapped causes stay available through errors.Unwrap.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func AccessDenied(format string, args ...any) *Error {
	return &Error{Kind: KindAccessDenied, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: cause}
}

// KindOf extracts the kind from err, or KindUpstream for anything
// unclassified (driver errors, broken pipes, ...).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsAccessDenied(err error) bool { return KindOf(err) == KindAccessDenied }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
