package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies structural failures surfaced to the operator
type ErrorKind string

const (
	KindBundleNotFound  ErrorKind = "BUNDLE_NOT_FOUND"
	KindNoMatchingFiles ErrorKind = "NO_MATCHING_FILES"
	KindFileRead        ErrorKind = "FILE_READ_ERROR"
	KindInvalidQuery    ErrorKind = "INVALID_QUERY"
	KindExport          ErrorKind = "EXPORT_ERROR"
)

// Sentinels for errors.Is checks against an *Error of the same kind.
var (
	ErrBundleNotFound  = &Error{Kind: KindBundleNotFound}
	ErrNoMatchingFiles = &Error{Kind: KindNoMatchingFiles}
	ErrFileRead        = &Error{Kind: KindFileRead}
	ErrInvalidQuery    = &Error{Kind: KindInvalidQuery}
	ErrExport          = &Error{Kind: KindExport}
)

// Error is a structured error carrying its kind and the path or query it concerns
type Error struct {
	Kind   ErrorKind
	Target string
	Err    error
}

// NewError wraps err with a kind and target.
func NewError(kind ErrorKind, target string, err error) *Error {
	return &Error{Kind: kind, Target: target, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := kindMessage(e.Kind)
	if e.Target != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels above work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func kindMessage(k ErrorKind) string {
	switch k {
	case KindBundleNotFound:
		return "support bundle not found"
	case KindNoMatchingFiles:
		return "no matching log files"
	case KindFileRead:
		return "failed to read log file"
	case KindInvalidQuery:
		return "invalid query"
	case KindExport:
		return "failed to export view"
	default:
		return "error"
	}
}
